package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"katalog/internal/models"
)

func TestStringListUnmarshal(t *testing.T) {
	t.Run("delimited string tags as raw", func(t *testing.T) {
		var list models.StringList
		assert.NoError(t, json.Unmarshal([]byte(`"S;M;L"`), &list))
		assert.True(t, list.IsRaw)
		assert.Equal(t, "S;M;L", list.Raw)
		assert.False(t, list.Empty())
	})

	t.Run("array tags as structured", func(t *testing.T) {
		var list models.StringList
		assert.NoError(t, json.Unmarshal([]byte(`["S","M"]`), &list))
		assert.False(t, list.IsRaw)
		assert.Equal(t, []string{"S", "M"}, list.Values)
	})

	t.Run("empty string is empty", func(t *testing.T) {
		var list models.StringList
		assert.NoError(t, json.Unmarshal([]byte(`""`), &list))
		assert.True(t, list.Empty())
	})

	t.Run("other shapes are rejected", func(t *testing.T) {
		var list models.StringList
		assert.Error(t, json.Unmarshal([]byte(`42`), &list))
	})
}

func TestRawNumberUnmarshal(t *testing.T) {
	t.Run("number keeps its textual form", func(t *testing.T) {
		var n models.RawNumber
		assert.NoError(t, json.Unmarshal([]byte(`39.99`), &n))
		assert.Equal(t, models.RawNumber("39.99"), n)
	})

	t.Run("numeric string passes through", func(t *testing.T) {
		var n models.RawNumber
		assert.NoError(t, json.Unmarshal([]byte(`"12"`), &n))
		assert.Equal(t, models.RawNumber("12"), n)
	})

	t.Run("non-scalar is rejected", func(t *testing.T) {
		var n models.RawNumber
		assert.Error(t, json.Unmarshal([]byte(`{}`), &n))
	})
}

func TestProductPatchUnmarshal(t *testing.T) {
	payload := []byte(`{
		"name": "Zip Hoodie",
		"sizes": "S;M;L",
		"colors": ["red", "blue"],
		"countInStock": 7,
		"image": [
			{"url": "http://img/1", "externalId": "ext-1", "delete": true},
			{"url": "http://img/2", "externalId": "ext-2"}
		],
		"newImages": ["payload-a"]
	}`)

	var patch models.ProductPatch
	assert.NoError(t, json.Unmarshal(payload, &patch))

	assert.Equal(t, "Zip Hoodie", *patch.Name)
	assert.Nil(t, patch.Category)
	assert.True(t, patch.Sizes.IsRaw)
	assert.False(t, patch.Colors.IsRaw)
	assert.Equal(t, models.RawNumber("7"), *patch.CountInStock)
	assert.Nil(t, patch.Price)
	assert.True(t, patch.Images[0].Delete)
	assert.False(t, patch.Images[1].Delete)
	assert.Equal(t, []string{"payload-a"}, patch.NewImages)
}

func TestProductPatchDistinguishesAbsentFromEmptyList(t *testing.T) {
	var absent models.ProductPatch
	assert.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.Nil(t, absent.Images)

	var present models.ProductPatch
	assert.NoError(t, json.Unmarshal([]byte(`{"image": []}`), &present))
	assert.NotNil(t, present.Images)
	assert.Len(t, present.Images, 0)
}
