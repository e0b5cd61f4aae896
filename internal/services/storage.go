package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"fitpack_admin/internal/config"
)

// ErrInvalidKey is returned for keys that escape the storage namespace
var ErrInvalidKey = errors.New("invalid storage key")

// FileStorage stores uploaded files under a namespace. Put returns a key;
// the public reference of a file is PublicPrefix()+key.
type FileStorage interface {
	Put(ctx context.Context, dir, filename string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	PublicPrefix() string
}

// NewFileStorage builds the backend selected by cfg.Driver. app is only
// needed for the gcs driver.
func NewFileStorage(ctx context.Context, cfg config.StorageConfig, app *firebase.App, log *zap.Logger) (FileStorage, error) {
	switch cfg.Driver {
	case "", "local":
		log.Info("using local file storage", zap.String("root", cfg.Root))
		return NewLocalStorage(cfg.Root, cfg.PublicPrefix)
	case "gcs":
		if app == nil {
			return nil, fmt.Errorf("gcs storage requires firebase credentials")
		}
		client, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase storage: %w", err)
		}
		bucket, err := client.Bucket(cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open bucket %q: %w", cfg.Bucket, err)
		}
		log.Info("using cloud storage", zap.String("bucket", cfg.Bucket))
		return NewGCSStorage(bucket, cfg.Bucket), nil
	case "cloudinary":
		log.Info("using cloudinary storage")
		return NewCloudinaryStorage(cfg.CloudinaryURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectKey joins dir and filename and rejects anything that would climb
// out of the storage root.
func objectKey(dir, filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return "", ErrInvalidKey
	}
	return cleanKey(path.Join(dir, filename))
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
