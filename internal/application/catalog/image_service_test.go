package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newImageFixture(t *testing.T) (*ImageService, *productFixture, *fakeImageStorage) {
	f := newProductFixture(t)
	storage := newFakeImageStorage()
	return NewImageService(f.svc, storage, 10*time.Minute, zaptest.NewLogger(t)), f, storage
}

func TestImageService_RequestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns a key under the product prefix", func(t *testing.T) {
		svc, f, _ := newImageFixture(t)
		p := newTestProduct("Ring", "100", 1)
		f.products.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.RequestUpload(ctx, p.ID, ImageUploadRequest{Filename: "ring.PNG", ContentType: "image/png"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.StorageKey, "products/"+p.ID.String()+"/"))
		assert.True(t, strings.HasSuffix(resp.StorageKey, ".png"))
		assert.Contains(t, resp.UploadURL, resp.StorageKey)
		assert.Equal(t, "https://cdn.test/"+resp.StorageKey, resp.PublicURL)
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), resp.ExpiresAt, 5*time.Second)
	})

	cases := []struct {
		name string
		req  ImageUploadRequest
		code string
	}{
		{"svg refused", ImageUploadRequest{Filename: "x.svg", ContentType: "image/svg+xml"}, "INVALID_CONTENT_TYPE"},
		{"gif refused", ImageUploadRequest{Filename: "x.gif", ContentType: "image/gif"}, "INVALID_CONTENT_TYPE"},
		{"path traversal", ImageUploadRequest{Filename: "../x.png", ContentType: "image/png"}, "INVALID_FILENAME"},
		{"wrong extension", ImageUploadRequest{Filename: "x.exe", ContentType: "image/jpeg"}, "INVALID_FILENAME"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, f, _ := newImageFixture(t)
			_, err := svc.RequestUpload(ctx, uuid.New(), tc.req)
			assert.ErrorIs(t, err, shared.NewDomainError(tc.code, ""))
			f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}
}

func TestImageService_Attach(t *testing.T) {
	ctx := context.Background()
	svc, f, storage := newImageFixture(t)
	p := newTestProduct("Necklace", "300", 1)
	f.products.On("FindByID", ctx, p.ID).Return(p, nil)
	f.products.On("Save", ctx, p).Return(nil)

	first := StorageKey(p.ID, ".jpg")
	second := StorageKey(p.ID, ".webp")

	_, err := svc.Attach(ctx, p.ID, first)
	assert.ErrorIs(t, err, shared.NewDomainError("UPLOAD_NOT_FOUND", ""))

	storage.uploaded[first] = true
	storage.uploaded[second] = true

	resp, err := svc.Attach(ctx, p.ID, first)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/"+first, resp.ImageURL)

	resp, err = svc.Attach(ctx, p.ID, second)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/"+first, resp.ImageURL, "first image stays the cover")
	assert.Len(t, resp.Images, 2)

	_, err = svc.Attach(ctx, p.ID, "products/"+uuid.NewString()+"/x.jpg")
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_STORAGE_KEY", ""))

	resp, err = svc.Remove(ctx, p.ID, "https://cdn.test/"+first)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/"+second, resp.ImageURL)
	assert.Equal(t, []string{first}, storage.deleted)
}
