package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"wearero-api/apperr"
	"wearero-api/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// MaxUploadSize is the largest accepted image
const MaxUploadSize = 5 << 20

// Uploader stores an object and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType, ext string) (string, error)
}

// UploadController handles product image uploads
type UploadController struct {
	uploader Uploader
	log      logrus.FieldLogger
}

// NewUploadController creates a new UploadController. A nil uploader disables uploads.
func NewUploadController(uploader Uploader, log logrus.FieldLogger) *UploadController {
	return &UploadController{uploader: uploader, log: log}
}

// UploadImage accepts a multipart "image" field and stores it
func (uc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if uc.uploader == nil {
		utils.RespondError(w, uc.log, apperr.New(apperr.ServiceUnavailable, "Image uploads are not configured"))
		return
	}

	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+(64<<10))
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondMessage(w, http.StatusBadRequest, "File too large")
			return
		}
		utils.RespondMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	if len(data) > MaxUploadSize {
		utils.RespondMessage(w, http.StatusBadRequest, "File too large")
		return
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		utils.RespondMessage(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	url, err := uc.uploader.Upload(ctx, bytes.NewReader(data), int64(len(data)), mtype.String(), mtype.Extension())
	if err != nil {
		utils.RespondError(w, uc.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}
