package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	pattern := regexp.MustCompile(`^products/[0-9a-f-]{36}\.png$`)

	assert.Regexp(t, pattern, ObjectName(".png"))
	assert.Regexp(t, pattern, ObjectName("PNG"))
	assert.NotEqual(t, ObjectName(".png"), ObjectName(".png"))
	assert.Regexp(t, `^products/[0-9a-f-]{36}$`, ObjectName(""))
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  MinioConfig
		want string
	}{
		{"plain", MinioConfig{Endpoint: "localhost:9001", Bucket: "wearero"}, "http://localhost:9001/wearero"},
		{"ssl", MinioConfig{Endpoint: "s3.example.com", Bucket: "img", UseSSL: true}, "https://s3.example.com/img"},
		{"override", MinioConfig{Endpoint: "minio:9000", Bucket: "img", PublicURL: "https://cdn.example.com/img/"}, "https://cdn.example.com/img"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, baseURL(tt.cfg))
		})
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9001/wearero/products/a.png", PublicURL("http://localhost:9001/wearero/", "products/a.png"))
	assert.Equal(t, "https://cdn/x/products/a%20b.png", PublicURL("https://cdn/x", "products/a b.png"))
}
