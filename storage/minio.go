package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// ProductImagePrefix is the key prefix of uploaded product images
const ProductImagePrefix = "products/"

// MinioConfig holds the object store connection settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the base of returned image URLs, e.g. a CDN in front of the bucket.
	PublicURL string
}

// MinioUploader stores product images in a MinIO bucket
type MinioUploader struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioUploader connects to MinIO and creates the bucket when missing
func NewMinioUploader(ctx context.Context, cfg MinioConfig, log logrus.FieldLogger) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
		log.WithField("bucket", cfg.Bucket).Info("bucket created")
	}

	return &MinioUploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL(cfg),
	}, nil
}

// Upload stores an image and returns its public URL
func (u *MinioUploader) Upload(ctx context.Context, r io.Reader, size int64, contentType, ext string) (string, error) {
	name := ObjectName(ext)
	_, err := u.client.PutObject(ctx, u.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return PublicURL(u.baseURL, name), nil
}

// ObjectName returns a fresh unique key for a product image with the given extension
func ObjectName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ProductImagePrefix + uuid.NewString() + strings.ToLower(ext)
}

// PublicURL joins the bucket base URL and an object key
func PublicURL(base, object string) string {
	return strings.TrimRight(base, "/") + "/" + (&url.URL{Path: object}).EscapedPath()
}

func baseURL(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}
