package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrStorageDisabled is returned when no object storage is configured.
var ErrStorageDisabled = errors.New("file storage is not configured")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// FacilityImageKey builds a fresh object key for a facility image. It fails
// for content types other than JPEG, PNG and WebP.
func FacilityImageKey(facilityID int, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	return path.Join("facilities", fmt.Sprint(facilityID), uuid.NewString()+ext), nil
}

type disabledUploader struct{}

// NewDisabledUploader is used when R2 credentials are missing.
func NewDisabledUploader() FileUploader { return disabledUploader{} }

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrStorageDisabled
}

func (disabledUploader) Delete(context.Context, string) error { return ErrStorageDisabled }

func (disabledUploader) GetPublicURL(string) string { return "" }
