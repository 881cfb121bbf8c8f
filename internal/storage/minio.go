package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"paperapi/internal/config"
)

// minioStorage implements Storage on MinIO or any S3-compatible backend.
// It is safe for concurrent use.
type minioStorage struct {
	client *minio.Client
	bucket string
	newID  func() string
}

// NewMinIO connects to the export bucket, creating it when missing.
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ensureBucket(ctx, cli, cfg.Bucket); err != nil {
		return nil, err
	}

	return &minioStorage{client: cli, bucket: cfg.Bucket, newID: uuid.NewString}, nil
}

func validate(cfg config.MinIOConfig) error {
	var errs []error
	for _, f := range []struct{ env, val string }{
		{"MINIO_ENDPOINT", cfg.Endpoint},
		{"MINIO_ACCESS_KEY", cfg.AccessKey},
		{"MINIO_SECRET_KEY", cfg.SecretKey},
		{"MINIO_BUCKET", cfg.Bucket},
	} {
		if f.val == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.env))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("paper export storage: %w", err)
	}
	return nil
}

func ensureBucket(ctx context.Context, cli *minio.Client, bucket string) error {
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check export bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create export bucket %q: %w", bucket, err)
	}
	return nil
}

func (m *minioStorage) PutExport(ctx context.Context, e PaperExport) (ExportedObject, error) {
	key := ExportKey(e.PaperID, m.newID())
	info, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(e.Body), int64(len(e.Body)), minio.PutObjectOptions{
		ContentType:        ExportContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", downloadName(e.Title)),
		UserMetadata:       exportMetadata(e),
	})
	if err != nil {
		return ExportedObject{}, err
	}
	return ExportedObject{Key: key, Size: info.Size, ETag: info.ETag}, nil
}

func (m *minioStorage) Remove(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioStorage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-type", ExportContentType)
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
