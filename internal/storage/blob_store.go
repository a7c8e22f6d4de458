// Package storage keeps uploaded files and hands back the URL they are
// served from.
package storage

import (
	"context"
	"errors"
)

var (
	ErrBytesWrittenMismatch = errors.New("bytes written mismatch")
	ErrInvalidName          = errors.New("invalid object name")
)

// BlobStore persists an uploaded object under name and returns its public URL.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
