package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore writes uploads into one directory that the HTTP server
// exposes under URLPrefix.
type FilesystemStore struct {
	dir       string
	urlPrefix string
	logger    *slog.Logger
}

// NewFilesystemStore creates dir if needed.
func NewFilesystemStore(dir, urlPrefix string, logger *slog.Logger) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}
	return &FilesystemStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/") + "/",
		logger:    logger,
	}, nil
}

var _ BlobStore = (*FilesystemStore)(nil)

// Handler serves stored files relative to the store directory. Directories
// are reported as missing, so the upload folder cannot be listed.
func (fs *FilesystemStore) Handler() http.Handler {
	return http.FileServer(filesOnly{http.Dir(fs.dir)})
}

type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func (fs *FilesystemStore) Put(ctx context.Context, name, _ string, data []byte) (url string, err error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	filename := filepath.Join(fs.dir, name)

	defer func() {
		log := fs.logger.With(slog.Group("blob", "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob store failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob stored", "size", len(data))
		}
	}()

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	if n, err := file.Write(data); err != nil {
		_ = os.Remove(filename)
		return "", fmt.Errorf("write: %w", err)
	} else if n != len(data) {
		_ = os.Remove(filename)
		return "", fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, len(data), n)
	}
	if err := file.Sync(); err != nil {
		_ = os.Remove(filename)
		return "", fmt.Errorf("sync: %w", err)
	}

	return fs.urlPrefix + name, nil
}
