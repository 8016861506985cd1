package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry stored in the products collection. Images live
// in an external media store; each ImageRef keeps the handle needed to
// delete the asset there.
type Product struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Category     string             `json:"category" bson:"category"`
	Name         string             `json:"name" bson:"name"`
	Type         string             `json:"type" bson:"type"`
	Sizes        []string           `json:"sizes" bson:"sizes"`
	Colors       []string           `json:"colors" bson:"colors"`
	Material     string             `json:"material" bson:"material"`
	Description  string             `json:"description" bson:"description"`
	CountInStock int                `json:"countInStock" bson:"countInStock"`
	Price        float64            `json:"price" bson:"price"`
	Images       []ImageRef         `json:"images" bson:"images"`
	Reviews      []Review           `json:"reviews,omitempty" bson:"reviews,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ImageRef points at an externally hosted image: the public URL plus the
// identifier the media service uses to address or delete the asset.
type ImageRef struct {
	URL        string `json:"url" bson:"url"`
	ExternalID string `json:"externalId" bson:"externalId"`
}

// Review is a single user's review embedded in a product document.
type Review struct {
	UserID    string    `json:"userId" bson:"userId"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Pagination carries listing metadata: the total record count and the
// unrounded page count (count divided by the page size).
type Pagination struct {
	Count     int64   `json:"count"`
	PageCount float64 `json:"pageCount"`
}

// CreateProductRequest is the payload for creating a product. Sizes and
// colors arrive in their legacy delimited forms (";" and space). UploadImg
// entries are base64/data-URI image payloads for the media store.
type CreateProductRequest struct {
	Category     string   `json:"category" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Type         string   `json:"type" validate:"required"`
	Sizes        string   `json:"sizes" validate:"required"`
	Colors       string   `json:"colors" validate:"required"`
	Material     string   `json:"material" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	CountInStock int      `json:"countInStock" validate:"gte=0"`
	Price        float64  `json:"price" validate:"gte=0"`
	UploadImg    []string `json:"uploadImg"`
}

// ProductPatch is the partial-update payload. Pointer fields distinguish
// absent from present-but-empty; the latter is rejected by the validation
// gate before any lookup or write happens.
type ProductPatch struct {
	Category     *string      `json:"category"`
	Name         *string      `json:"name"`
	Type         *string      `json:"type"`
	Sizes        *StringList  `json:"sizes"`
	Colors       *StringList  `json:"colors"`
	Material     *string      `json:"material"`
	Description  *string      `json:"description"`
	CountInStock *RawNumber   `json:"countInStock"`
	Price        *RawNumber   `json:"price"`
	Images       []ImagePatch `json:"image"`
	NewImages    []string     `json:"newImages"`
}

// ImagePatch is one entry of the image instruction list on update: an
// existing ImageRef, optionally flagged for deletion from the media store.
type ImagePatch struct {
	URL        string `json:"url"`
	ExternalID string `json:"externalId"`
	Delete     bool   `json:"delete"`
}

// StringList is the tagged input variant for sizes/colors: callers may send
// either the legacy delimited string or an already structured list. Only the
// raw form participates in diffing.
type StringList struct {
	Raw    string
	Values []string
	IsRaw  bool
}

func (s *StringList) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err == nil {
		s.Values = values
		s.IsRaw = false
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	s.Raw = raw
	s.IsRaw = true
	return nil
}

// Empty reports whether the proposed value carries no content in either form.
func (s *StringList) Empty() bool {
	if s.IsRaw {
		return s.Raw == ""
	}
	return len(s.Values) == 0
}

// RawNumber accepts a JSON number or a numeric string and keeps the textual
// form. Stock and price diffs compare against the stored value's string
// representation, so the raw text is what matters.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*n = RawNumber(num.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a number or a numeric string")
	}
	*n = RawNumber(s)
	return nil
}
