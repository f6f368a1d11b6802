package service_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/apperrors"
	"github.com/foodgram-app/backend/internal/service"
)

// Smallest payload http.DetectContentType recognises as a PNG.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

func TestImageStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty image", func(t *testing.T) {
		svc := service.NewImageService(nil, t.TempDir())
		url, err := svc.Store(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, url)
	})

	t.Run("plain URL passes through", func(t *testing.T) {
		svc := service.NewImageService(nil, t.TempDir())
		url, err := svc.Store(ctx, "https://example.com/cake.png")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/cake.png", url)
	})

	t.Run("data URI written to the media directory", func(t *testing.T) {
		dir := t.TempDir()
		svc := service.NewImageService(nil, dir)

		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
		url, err := svc.Store(ctx, uri)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(url, "/media/recipe-images/"))
		assert.True(t, strings.HasSuffix(url, ".png"))

		written, err := os.ReadFile(filepath.Join(dir, "recipe-images", filepath.Base(url)))
		require.NoError(t, err)
		assert.Equal(t, pngBytes, written)
	})

	t.Run("malformed data URI", func(t *testing.T) {
		svc := service.NewImageService(nil, t.TempDir())
		_, err := svc.Store(ctx, "data:image/png,no-base64-marker")
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("invalid base64", func(t *testing.T) {
		svc := service.NewImageService(nil, t.TempDir())
		_, err := svc.Store(ctx, "data:image/png;base64,@@@not-base64@@@")
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		svc := service.NewImageService(nil, t.TempDir())
		uri := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("just text"))
		_, err := svc.Store(ctx, uri)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}
