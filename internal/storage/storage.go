package storage

import (
	"context"
	"fmt"
	"io"

	"curia-backend/internal/config"
)

// FileStorage abstracts file persistence: local disk or an S3 bucket.
type FileStorage interface {
	// Save persists file content and returns the storage path (used for retrieval/deletion).
	Save(ctx context.Context, namespace, fileID, filename string, reader io.Reader) (storagePath string, err error)
	// Open returns a reader for the stored file.
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
	// Delete removes the file from storage. Missing files are not an error.
	Delete(ctx context.Context, storagePath string) error
}

// New selects a FileStorage implementation from config.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath), nil
	case "s3":
		s, err := NewS3Storage(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
