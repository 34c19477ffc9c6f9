package service

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/google/uuid"
)

const MaxUploadSize = 5 << 20

type blobStore interface {
	Put(ctx context.Context, data []byte, contentType string, name string) (string, error)
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadService struct {
	logger *types.Logger
	blobs  blobStore
}

func NewUploadService(logger *types.Logger, blobs blobStore) *UploadService {
	return &UploadService{
		logger: logger,
		blobs:  blobs,
	}
}

// UploadImage stores an image under a random name that keeps the original extension
// and returns its public URL.
func (s *UploadService) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errorz.Validation("no file uploaded")
	}
	if len(data) > MaxUploadSize {
		return "", errorz.Validation("file is too large, the limit is 5 MB")
	}

	contentType := http.DetectContentType(data)
	defaultExt, ok := imageExtensions[contentType]
	if !ok {
		return "", errorz.Validation("only PNG, JPEG, GIF and WebP images are accepted")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		ext = defaultExt
	}
	name := uuid.New().String() + ext

	url, err := s.blobs.Put(ctx, data, contentType, name)
	if err != nil {
		return "", errorz.Upstream("failed to upload file", err)
	}
	s.logger.Infof("uploaded %s (%d bytes)", name, len(data))
	return url, nil
}
