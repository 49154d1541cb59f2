package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AllowedImageTypes maps the accepted upload content types to file extensions.
// SVG is excluded because it can carry script.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStorage is the object storage port used for product images.
// Implemented by the S3 adapter and a development stub.
type ImageStorage interface {
	// PresignUpload returns a URL the browser can PUT the object to
	PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the URL the storefront loads the object from
	PublicURL(key string) string

	// ObjectExists checks whether the object was uploaded
	ObjectExists(ctx context.Context, key string) (bool, error)

	// DeleteObject removes the object
	DeleteObject(ctx context.Context, key string) error
}

// ImageService hands out presigned uploads and attaches uploaded images to products
type ImageService struct {
	products  *ProductService
	storage   ImageStorage
	expiresIn time.Duration
	logger    *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(products *ProductService, storage ImageStorage, expiresIn time.Duration, logger *zap.Logger) *ImageService {
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{
		products:  products,
		storage:   storage,
		expiresIn: expiresIn,
		logger:    logger,
	}
}

// RequestUpload validates the file type and returns a presigned PUT URL
func (s *ImageService) RequestUpload(ctx context.Context, productID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG and WebP images are allowed")
	}
	if err := validateFilename(req.Filename); err != nil {
		return nil, err
	}
	if _, err := s.products.find(ctx, productID); err != nil {
		return nil, err
	}

	key := StorageKey(productID, ext)
	url, expiresAt, err := s.storage.PresignUpload(ctx, key, contentType, s.expiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	return &ImageUploadResponse{
		UploadURL:  url,
		StorageKey: key,
		PublicURL:  s.storage.PublicURL(key),
		ExpiresAt:  expiresAt,
	}, nil
}

// Attach adds an uploaded object to the product gallery. The first image
// becomes the product's cover.
func (s *ImageService) Attach(ctx context.Context, productID uuid.UUID, key string) (*ProductResponse, error) {
	prefix := keyPrefix(productID)
	if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key does not belong to this product")
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check uploaded object: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "The image has not been uploaded yet")
	}
	url := s.storage.PublicURL(key)
	return s.products.mutate(ctx, productID, func(p *catalog.Product) error { return p.AddImage(url) })
}

// Remove drops an image from the gallery and deletes the object when it is ours
func (s *ImageService) Remove(ctx context.Context, productID uuid.UUID, url string) (*ProductResponse, error) {
	resp, err := s.products.mutate(ctx, productID, func(p *catalog.Product) error {
		p.RemoveImage(url)
		return nil
	})
	if err != nil {
		return nil, err
	}
	prefix := s.storage.PublicURL(keyPrefix(productID))
	if strings.HasPrefix(url, prefix) {
		key := keyPrefix(productID) + strings.TrimPrefix(url, prefix)
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to delete image object", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

// StorageKey builds a unique object key under the product's prefix
func StorageKey(productID uuid.UUID, ext string) string {
	return keyPrefix(productID) + uuid.NewString() + ext
}

func keyPrefix(productID uuid.UUID) string {
	return "products/" + productID.String() + "/"
}

func validateFilename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/\\") || path.Clean(name) != name {
		return shared.NewDomainError("INVALID_FILENAME", "Invalid file name")
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return nil
	}
	return shared.NewDomainError("INVALID_FILENAME", "File must be a .jpg, .jpeg, .png or .webp image")
}
