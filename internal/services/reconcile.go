package services

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"katalog/internal/models"
)

// Delimiters of the legacy string forms for sizes and colors.
const (
	sizesDelimiter  = ";"
	colorsDelimiter = " "
)

// validatePatch is the precondition gate for updates: a field that is
// present but empty is rejected before any lookup or write happens.
func validatePatch(patch *models.ProductPatch) error {
	scalars := []struct {
		name  string
		value *string
	}{
		{"category", patch.Category},
		{"name", patch.Name},
		{"type", patch.Type},
		{"material", patch.Material},
		{"description", patch.Description},
	}
	for _, field := range scalars {
		if field.value != nil && *field.value == "" {
			return fmt.Errorf("%w: field %q is empty", ErrValidation, field.name)
		}
	}

	if patch.Sizes != nil && patch.Sizes.Empty() {
		return fmt.Errorf("%w: field \"sizes\" is empty", ErrValidation)
	}
	if patch.Colors != nil && patch.Colors.Empty() {
		return fmt.Errorf("%w: field \"colors\" is empty", ErrValidation)
	}
	if patch.CountInStock != nil && *patch.CountInStock == "" {
		return fmt.Errorf("%w: field \"countInStock\" is empty", ErrValidation)
	}
	if patch.Price != nil && *patch.Price == "" {
		return fmt.Errorf("%w: field \"price\" is empty", ErrValidation)
	}
	if patch.Images != nil && len(patch.Images) == 0 {
		return fmt.Errorf("%w: 'image' must be a non-empty list", ErrValidation)
	}
	if patch.NewImages != nil && len(patch.NewImages) == 0 {
		return fmt.Errorf("%w: 'newImages' must be a non-empty list", ErrValidation)
	}
	return nil
}

// planScalarChanges computes the ordered writes needed to move the stored
// text fields to the proposed state. A field that is absent, empty, or equal
// to the stored value produces no write.
func planScalarChanges(old *models.Product, patch *models.ProductPatch) bson.D {
	var changes bson.D

	setString := func(key string, proposed *string, stored string) {
		if proposed != nil && *proposed != "" && *proposed != stored {
			changes = append(changes, bson.E{Key: key, Value: *proposed})
		}
	}

	setString("category", patch.Category, old.Category)
	setString("name", patch.Name, old.Name)
	setString("type", patch.Type, old.Type)

	if split, changed := planListChange(patch.Sizes, old.Sizes, sizesDelimiter); changed {
		changes = append(changes, bson.E{Key: "sizes", Value: split})
	}
	if split, changed := planListChange(patch.Colors, old.Colors, colorsDelimiter); changed {
		changes = append(changes, bson.E{Key: "colors", Value: split})
	}

	setString("material", patch.Material, old.Material)
	setString("description", patch.Description, old.Description)

	return changes
}

// planListChange handles the dual input form of sizes/colors. Only the raw
// delimited variant participates in diffing; a structured list produces no
// write. The raw form is compared against the stored sequence re-joined
// with the same delimiter.
func planListChange(proposed *models.StringList, stored []string, delimiter string) ([]string, bool) {
	if proposed == nil || !proposed.IsRaw {
		return nil, false
	}
	if proposed.Raw == strings.Join(stored, delimiter) {
		return nil, false
	}
	return strings.Split(proposed.Raw, delimiter), true
}

// planNumericChanges diffs countInStock and price. The proposed raw text is
// compared against the stored value's string form; a differing value must
// parse to a non-negative number.
func planNumericChanges(old *models.Product, patch *models.ProductPatch) (bson.D, error) {
	var changes bson.D

	if patch.CountInStock != nil {
		proposed := string(*patch.CountInStock)
		if proposed != "" && proposed != strconv.Itoa(old.CountInStock) {
			count, err := strconv.Atoi(proposed)
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: countInStock must be a non-negative integer", ErrValidation)
			}
			changes = append(changes, bson.E{Key: "countInStock", Value: count})
		}
	}

	if patch.Price != nil {
		proposed := string(*patch.Price)
		if proposed != "" && proposed != strconv.FormatFloat(old.Price, 'f', -1, 64) {
			price, err := strconv.ParseFloat(proposed, 64)
			if err != nil || price < 0 {
				return nil, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
			}
			changes = append(changes, bson.E{Key: "price", Value: price})
		}
	}

	return changes, nil
}

// imagePlan is the outcome of reconciling the proposed image instruction
// set: assets to destroy, entries the caller keeps, payloads to upload.
type imagePlan struct {
	destroy  []string
	retained []models.ImageRef
	uploads  []string
}

func planImageChanges(patch *models.ProductPatch) imagePlan {
	var plan imagePlan
	for _, img := range patch.Images {
		if img.Delete {
			plan.destroy = append(plan.destroy, img.ExternalID)
			continue
		}
		plan.retained = append(plan.retained, models.ImageRef{URL: img.URL, ExternalID: img.ExternalID})
	}
	plan.uploads = append(plan.uploads, patch.NewImages...)
	return plan
}

// finalImageSet merges retained and freshly uploaded refs: retained entries
// come first, uploads follow. An empty result means the stored images stay
// untouched.
func finalImageSet(retained, uploaded []models.ImageRef) []models.ImageRef {
	if len(retained) > 0 {
		return append(retained, uploaded...)
	}
	if len(uploaded) > 0 {
		return uploaded
	}
	return nil
}
