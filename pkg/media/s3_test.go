package media

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePayload(t *testing.T) {
	content := []byte("fake image bytes")
	encoded := base64.StdEncoding.EncodeToString(content)

	t.Run("data URI with known format", func(t *testing.T) {
		raw, contentType, ext, err := decodePayload("data:image/webp;base64," + encoded)
		assert.NoError(t, err)
		assert.Equal(t, content, raw)
		assert.Equal(t, "image/webp", contentType)
		assert.Equal(t, ".webp", ext)
	})

	t.Run("bare base64 defaults to png", func(t *testing.T) {
		raw, contentType, ext, err := decodePayload(encoded)
		assert.NoError(t, err)
		assert.Equal(t, content, raw)
		assert.Equal(t, "image/png", contentType)
		assert.Equal(t, ".png", ext)
	})

	t.Run("unsupported format is rejected", func(t *testing.T) {
		_, _, _, err := decodePayload("data:image/gif;base64," + encoded)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported image format")
	})

	t.Run("missing base64 marker is rejected", func(t *testing.T) {
		_, _, _, err := decodePayload("data:image/png," + encoded)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "malformed")
	})

	t.Run("invalid base64 is rejected", func(t *testing.T) {
		_, _, _, err := decodePayload("data:image/png;base64,!!!not-base64!!!")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid base64")
	})
}
