package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
)

// B2Storage holds a connected Backblaze B2 bucket for upload storage.
type B2Storage struct {
	Client *b2.Client
	Bucket *b2.Bucket
}

// Init connects to B2 and resolves the configured bucket.
func Init(ctx context.Context, accountID, appKey, bucketName string) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &B2Storage{Client: client, Bucket: bucket}, nil
}

// UploadFile streams one object into the bucket and returns its public URL.
func (s *B2Storage) UploadFile(ctx context.Context, key string, r io.Reader) (string, error) {
	obj := s.Bucket.Object(key)
	w := obj.NewWriter(ctx)

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return fmt.Sprintf("%s/file/%s/%s", s.Bucket.BaseURL(), s.Bucket.Name(), key), nil
}

// DeleteFile removes an object from the bucket.
func (s *B2Storage) DeleteFile(ctx context.Context, key string) error {
	if err := s.Bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
