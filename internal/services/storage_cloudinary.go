package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage uploads files to Cloudinary. Keys carry the delivery
// path ("image/upload/products/x.jpg", "raw/upload/exports/y.csv") so that
// prefix+key is the public URL.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL is not set")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) PublicPrefix() string {
	return "https://res.cloudinary.com/" + s.cld.Config.Cloud.CloudName + "/"
}

func (s *CloudinaryStorage) Put(ctx context.Context, dir, filename string, data []byte, contentType string) (string, error) {
	key, err := objectKey(dir, filename)
	if err != nil {
		return "", err
	}

	resourceType := "raw"
	if strings.HasPrefix(contentType, "image/") {
		resourceType = "image"
	}

	_, err = s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID(resourceType, key),
		ResourceType: resourceType,
	})
	if err != nil {
		return "", err
	}
	return resourceType + "/upload/" + key, nil
}

func (s *CloudinaryStorage) Exists(ctx context.Context, key string) (bool, error) {
	resourceType, id, err := splitCloudinaryKey(key)
	if err != nil {
		return false, err
	}
	res, err := s.cld.Admin.Asset(ctx, admin.AssetParams{
		AssetType: api.AssetType(resourceType),
		PublicID:  id,
	})
	if err != nil {
		return false, err
	}
	return res.PublicID != "", nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, key string) error {
	resourceType, id, err := splitCloudinaryKey(key)
	if err != nil {
		return err
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     id,
		ResourceType: resourceType,
	})
	if err != nil {
		return err
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: %s", id, res.Result)
	}
	return nil
}

// publicID drops the extension for images; raw assets keep it.
func publicID(resourceType, key string) string {
	if resourceType == "image" {
		return strings.TrimSuffix(key, path.Ext(key))
	}
	return key
}

func splitCloudinaryKey(key string) (resourceType, id string, err error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || parts[1] != "upload" || parts[2] == "" {
		return "", "", ErrInvalidKey
	}
	return parts[0], publicID(parts[0], parts[2]), nil
}
