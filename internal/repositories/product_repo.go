package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"katalog/internal/models"
)

// ErrNotFound is returned when a product or review does not exist.
var ErrNotFound = errors.New("not found")

// ProductRepository defines the document-store operations the catalog needs.
type ProductRepository interface {
	List(ctx context.Context, skip, limit int64) ([]models.Product, error)
	SearchByName(ctx context.Context, term string, skip, limit int64) ([]models.Product, error)
	EstimatedCount(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// UpdateFields applies a single partial update containing every changed
	// field, in the order given.
	UpdateFields(ctx context.Context, id string, fields bson.D) error
	Delete(ctx context.Context, id string) error
	GetUserReview(ctx context.Context, productID, userID string) (*models.Review, error)
}
