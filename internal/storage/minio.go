package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediavault/internal/config"
	mediaSvc "mediavault/internal/domain/services/media"
)

// MinioStore is the object-store side of the FileStore collaborator,
// backed by a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinioStore creates the MinIO client and ensures the bucket exists
func NewMinioStore(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (mediaSvc.ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("bucket created", "bucket", cfg.Bucket)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Remove deletes the physical object at the given storage path
func (s *MinioStore) Remove(ctx context.Context, storagePath string) error {
	err := s.client.RemoveObject(ctx, s.bucket, storagePath, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s: %w", storagePath, err)
	}

	s.logger.Debug("object removed", "bucket", s.bucket, "path", storagePath)
	return nil
}
