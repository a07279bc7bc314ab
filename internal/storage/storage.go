// Package storage persists raw blob content addressed by key. Two
// backends are provided: a local directory tree and an S3-compatible
// object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"filevault/internal/config"
)

var ErrBlobNotFound = errors.New("blob not found")

type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// NewKey returns a fresh collision-resistant blob key, date-prefixed
// to keep directory fan-out bounded.
func NewKey() string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, uuid.NewString())
}

// DerivativeKey addresses a resized copy of an image blob at the
// given target width.
func DerivativeKey(key string, width int) string {
	return fmt.Sprintf("%s_%d", key, width)
}

func New(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "", "disk":
		return NewDiskStore(cfg.Root), nil
	case "s3":
		return NewObjectStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
