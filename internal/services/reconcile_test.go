package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"katalog/internal/models"
)

func strPtr(s string) *string { return &s }
func rawNum(s string) *models.RawNumber {
	n := models.RawNumber(s)
	return &n
}
func rawList(s string) *models.StringList {
	return &models.StringList{Raw: s, IsRaw: true}
}

func storedProduct() *models.Product {
	return &models.Product{
		Category:     "clothing",
		Name:         "Hoodie",
		Type:         "unisex",
		Sizes:        []string{"S", "M"},
		Colors:       []string{"red", "blue"},
		Material:     "cotton",
		Description:  "A warm hoodie",
		CountInStock: 5,
		Price:        39.99,
	}
}

func TestValidatePatch(t *testing.T) {
	t.Run("empty scalar field is rejected", func(t *testing.T) {
		err := validatePatch(&models.ProductPatch{Category: strPtr("")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty sizes string is rejected", func(t *testing.T) {
		err := validatePatch(&models.ProductPatch{Sizes: rawList("")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty image list is rejected", func(t *testing.T) {
		err := validatePatch(&models.ProductPatch{Images: []models.ImagePatch{}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty newImages list is rejected", func(t *testing.T) {
		err := validatePatch(&models.ProductPatch{NewImages: []string{}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("absent fields pass", func(t *testing.T) {
		assert.NoError(t, validatePatch(&models.ProductPatch{}))
	})

	t.Run("populated fields pass", func(t *testing.T) {
		patch := &models.ProductPatch{
			Name:      strPtr("Zip Hoodie"),
			Sizes:     rawList("S;M;L"),
			NewImages: []string{"payload"},
		}
		assert.NoError(t, validatePatch(patch))
	})
}

func TestPlanScalarChanges(t *testing.T) {
	t.Run("values equal to stored produce no writes", func(t *testing.T) {
		old := storedProduct()
		patch := &models.ProductPatch{
			Category: strPtr("clothing"),
			Name:     strPtr("Hoodie"),
			Material: strPtr("cotton"),
		}
		assert.Empty(t, planScalarChanges(old, patch))
	})

	t.Run("changed values are written in field order", func(t *testing.T) {
		old := storedProduct()
		patch := &models.ProductPatch{
			Category:    strPtr("outerwear"),
			Type:        strPtr("mens"),
			Sizes:       rawList("S;M;L"),
			Description: strPtr("A warmer hoodie"),
		}
		changes := planScalarChanges(old, patch)
		assert.Equal(t, bson.D{
			{Key: "category", Value: "outerwear"},
			{Key: "type", Value: "mens"},
			{Key: "sizes", Value: []string{"S", "M", "L"}},
			{Key: "description", Value: "A warmer hoodie"},
		}, changes)
	})

	t.Run("empty proposed values produce no writes", func(t *testing.T) {
		old := storedProduct()
		patch := &models.ProductPatch{Name: strPtr("")}
		assert.Empty(t, planScalarChanges(old, patch))
	})
}

func TestPlanListChange(t *testing.T) {
	t.Run("raw form differing from stored splits and updates", func(t *testing.T) {
		split, changed := planListChange(rawList("S;M;L"), []string{"S", "M"}, sizesDelimiter)
		assert.True(t, changed)
		assert.Equal(t, []string{"S", "M", "L"}, split)
	})

	t.Run("raw form equal to stored is a no-op", func(t *testing.T) {
		_, changed := planListChange(rawList("S;M"), []string{"S", "M"}, sizesDelimiter)
		assert.False(t, changed)
	})

	t.Run("structured form is ignored", func(t *testing.T) {
		proposed := &models.StringList{Values: []string{"S", "M", "L"}}
		_, changed := planListChange(proposed, []string{"S", "M"}, sizesDelimiter)
		assert.False(t, changed)
	})

	t.Run("colors split on space", func(t *testing.T) {
		split, changed := planListChange(rawList("red blue green"), []string{"red", "blue"}, colorsDelimiter)
		assert.True(t, changed)
		assert.Equal(t, []string{"red", "blue", "green"}, split)
	})

	t.Run("absent is a no-op", func(t *testing.T) {
		_, changed := planListChange(nil, []string{"S"}, sizesDelimiter)
		assert.False(t, changed)
	})
}

func TestPlanNumericChanges(t *testing.T) {
	t.Run("values matching the stored string form produce no writes", func(t *testing.T) {
		old := storedProduct()
		patch := &models.ProductPatch{
			CountInStock: rawNum("5"),
			Price:        rawNum("39.99"),
		}
		changes, err := planNumericChanges(old, patch)
		assert.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("differing values are parsed and written", func(t *testing.T) {
		old := storedProduct()
		patch := &models.ProductPatch{
			CountInStock: rawNum("12"),
			Price:        rawNum("44.5"),
		}
		changes, err := planNumericChanges(old, patch)
		assert.NoError(t, err)
		assert.Equal(t, bson.D{
			{Key: "countInStock", Value: 12},
			{Key: "price", Value: 44.5},
		}, changes)
	})

	t.Run("non-numeric stock is rejected", func(t *testing.T) {
		_, err := planNumericChanges(storedProduct(), &models.ProductPatch{CountInStock: rawNum("lots")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		_, err := planNumericChanges(storedProduct(), &models.ProductPatch{Price: rawNum("-3")})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestPlanImageChanges(t *testing.T) {
	patch := &models.ProductPatch{
		Images: []models.ImagePatch{
			{URL: "http://img/1", ExternalID: "ext-1", Delete: true},
			{URL: "http://img/2", ExternalID: "ext-2"},
			{URL: "http://img/3", ExternalID: "ext-3", Delete: true},
		},
		NewImages: []string{"payload-a", "payload-b"},
	}

	plan := planImageChanges(patch)
	assert.Equal(t, []string{"ext-1", "ext-3"}, plan.destroy)
	assert.Equal(t, []models.ImageRef{{URL: "http://img/2", ExternalID: "ext-2"}}, plan.retained)
	assert.Equal(t, []string{"payload-a", "payload-b"}, plan.uploads)
}

func TestFinalImageSet(t *testing.T) {
	retained := []models.ImageRef{{URL: "http://img/keep", ExternalID: "keep"}}
	uploaded := []models.ImageRef{{URL: "http://img/new", ExternalID: "new"}}

	t.Run("retained and uploaded merge in order", func(t *testing.T) {
		final := finalImageSet(retained, uploaded)
		assert.Equal(t, []models.ImageRef{
			{URL: "http://img/keep", ExternalID: "keep"},
			{URL: "http://img/new", ExternalID: "new"},
		}, final)
	})

	t.Run("uploaded alone when nothing retained", func(t *testing.T) {
		assert.Equal(t, uploaded, finalImageSet(nil, uploaded))
	})

	t.Run("both empty means no image update", func(t *testing.T) {
		assert.Nil(t, finalImageSet(nil, nil))
	})
}
