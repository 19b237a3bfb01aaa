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

// ErrStorageUnavailable is returned when object storage is not configured.
var ErrStorageUnavailable = errors.New("file storage is not configured")

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

// ObjectKey строит уникальный ключ вида "<folder>/<ownerID>/<uuid><ext>".
func ObjectKey(folder, ownerID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(folder, ownerID, uuid.NewString()+ext)
}

const (
	FolderPlayerAvatars   = "players/avatars"
	FolderTournamentLogos = "tournaments/logos"
)

// ExtensionFromContentType maps an image content type to a file extension.
func ExtensionFromContentType(contentType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", fmt.Errorf("unsupported image content type: %q", contentType)
	}
}

type disabledUploader struct{}

// NewDisabledUploader returns an uploader that refuses every write.
// Used when R2 credentials are not provided.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrStorageUnavailable
}

func (disabledUploader) Delete(context.Context, string) error {
	return ErrStorageUnavailable
}

func (disabledUploader) GetPublicURL(string) string {
	return ""
}
