package services

import (
	"context"
	"errors"

	"cloud.google.com/go/storage"
)

// GCSStorage stores files in a Cloud Storage bucket owned by the Firebase project
type GCSStorage struct {
	bucket *storage.BucketHandle
	name   string
}

func NewGCSStorage(bucket *storage.BucketHandle, name string) *GCSStorage {
	return &GCSStorage{bucket: bucket, name: name}
}

func (s *GCSStorage) PublicPrefix() string {
	return "https://storage.googleapis.com/" + s.name + "/"
}

func (s *GCSStorage) Put(ctx context.Context, dir, filename string, data []byte, contentType string) (string, error) {
	key, err := objectKey(dir, filename)
	if err != nil {
		return "", err
	}

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return key, nil
}

func (s *GCSStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}
