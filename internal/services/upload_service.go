package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/BradenHooton/scribe/internal/storage"
	pkgauth "github.com/BradenHooton/scribe/pkg/auth"
)

// ErrUnsupportedUpload is returned for files that are not a recognised image
var ErrUnsupportedUpload = errors.New("file is not a supported image")

// UploadService validates uploaded images and hands them to a blob store
type UploadService struct {
	store  storage.BlobStore
	logger *slog.Logger
	now    func() time.Time
}

func NewUploadService(store storage.BlobStore, logger *slog.Logger) *UploadService {
	return &UploadService{store: store, logger: logger, now: time.Now}
}

// WithClock replaces the service clock. Used by tests.
func (s *UploadService) WithClock(now func() time.Time) *UploadService {
	s.now = now
	return s
}

// Save stores data under a fresh name and returns the URL it is served from.
// The type is taken from the content, never from the client's filename.
func (s *UploadService) Save(ctx context.Context, data []byte) (string, error) {
	typ, err := storage.DetectImage(data)
	if err != nil {
		s.logger.Info("upload rejected", slog.Any("error", err))
		return "", ErrUnsupportedUpload
	}

	suffix, err := pkgauth.RandomHex(6)
	if err != nil {
		s.logger.Error("failed to generate upload name", slog.Any("error", err))
		return "", models.ErrInternalServer
	}
	name := fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), suffix, typ.Ext)

	url, err := s.store.Put(ctx, name, typ.MIME, data)
	if err != nil {
		s.logger.Error("failed to store upload", slog.String("name", name), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("upload stored", slog.String("url", url), slog.Int("size", len(data)))
	return url, nil
}
