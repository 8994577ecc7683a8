package miniostore

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// Store talks to any S3-compatible endpoint (MinIO, Ceph RGW, Wasabi, ...)
// through the minio client.
type Store struct {
	bucket string
	client *minio.Client
}

type Options struct {
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func New(opt Options) (*Store, error) {
	if opt.Bucket == "" {
		return nil, fmt.Errorf("minio: bucket is required")
	}
	if opt.Endpoint == "" {
		return nil, fmt.Errorf("minio: endpoint is required")
	}

	access, secret := opt.AccessKey, opt.SecretKey
	if access == "" {
		access = os.Getenv("MINIO_ACCESS_KEY")
	}
	if secret == "" {
		secret = os.Getenv("MINIO_SECRET_KEY")
	}

	client, err := minio.New(opt.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: opt.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &Store{bucket: opt.Bucket, client: client}, nil
}

func (s *Store) Name() string { return "minio" }

func (s *Store) List(ctx context.Context, prefix string) ([]object.Info, error) {
	ch := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var out []object.Info
	for obj := range ch {
		if obj.Err != nil {
			return out, fmt.Errorf("list bucket %s prefix %q: %w", s.bucket, prefix, obj.Err)
		}
		out = append(out, object.Info{
			Key:     obj.Key,
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
