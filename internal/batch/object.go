package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const objectScheme = "s3://"

// IsObjectPath reports whether p names an object-store location
// (s3://bucket/key) rather than a local file.
func IsObjectPath(p string) bool {
	return strings.HasPrefix(p, objectScheme)
}

// ObjectConfig holds S3-compatible storage configuration.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// ObjectStore reads and writes batch files in an S3-compatible bucket.
type ObjectStore struct {
	mc *minio.Client
}

// NewObjectStore connects a client for the configured endpoint.
func NewObjectStore(cfg ObjectConfig) (*ObjectStore, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store: connect: %w", err)
	}
	return &ObjectStore{mc: mc}, nil
}

// Open returns a reader over s3://bucket/key.
func (s *ObjectStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := splitObjectPath(path)
	if err != nil {
		return nil, err
	}
	obj, err := s.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("object store: get %s: %w", path, err)
	}
	return obj, nil
}

// Put uploads data to s3://bucket/key, creating the bucket if needed.
func (s *ObjectStore) Put(ctx context.Context, path string, data []byte) error {
	bucket, key, err := splitObjectPath(path)
	if err != nil {
		return err
	}

	exists, err := s.mc.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("object store: check bucket: %w", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("object store: create bucket: %w", err)
		}
	}

	_, err = s.mc.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("object store: put %s: %w", path, err)
	}
	return nil
}

func splitObjectPath(p string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(p, objectScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("object store: invalid path %q, want s3://bucket/key", p)
	}
	return bucket, key, nil
}
