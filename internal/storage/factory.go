package storage

import (
	"context"
	"fmt"

	"github.com/dev-tams/sweepkit/internal/config"
	"github.com/dev-tams/sweepkit/internal/storage/local"
	"github.com/dev-tams/sweepkit/internal/storage/miniostore"
	s3store "github.com/dev-tams/sweepkit/internal/storage/s3"
)

// FromConfig builds the ObjectStore named by cfg.Provider.
func FromConfig(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.Provider {
	case "s3":
		s, err := s3store.New(ctx, s3store.Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("provider s3: %w", err)
		}
		return s, nil

	case "minio":
		s, err := miniostore.New(miniostore.Options{
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("provider minio: %w", err)
		}
		return s, nil

	case "local":
		if cfg.LocalPath == "" {
			return nil, fmt.Errorf("provider local: local_path is required")
		}
		return local.New(cfg.LocalPath), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
