package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"katalog/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It keeps insertion order so paginated listings are deterministic.
type MockProductRepository struct {
	products map[string]models.Product
	order    []string
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns one page of products in insertion order.
func (r *MockProductRepository) List(ctx context.Context, skip, limit int64) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page(r.order, skip, limit), nil
}

// SearchByName returns one page of products whose name contains the term,
// case-insensitively.
func (r *MockProductRepository) SearchByName(ctx context.Context, term string, skip, limit int64) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []string
	for _, id := range r.order {
		if strings.Contains(strings.ToLower(r.products[id].Name), strings.ToLower(term)) {
			matched = append(matched, id)
		}
	}
	return r.page(matched, skip, limit), nil
}

func (r *MockProductRepository) page(ids []string, skip, limit int64) []models.Product {
	if skip >= int64(len(ids)) {
		return nil
	}
	end := skip + limit
	if end > int64(len(ids)) {
		end = int64(len(ids))
	}
	products := make([]models.Product, 0, end-skip)
	for _, id := range ids[skip:end] {
		products = append(products, r.products[id])
	}
	return products
}

// EstimatedCount returns the number of stored products.
func (r *MockProductRepository) EstimatedCount(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// GetByID returns a product by its id.
func (r *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	id := product.ID.Hex()
	if _, exists := r.products[id]; !exists {
		r.order = append(r.order, id)
	}
	r.products[id] = *product
	return nil
}

// UpdateFields applies a partial update to a stored product.
func (r *MockProductRepository) UpdateFields(ctx context.Context, id string, fields bson.D) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	for _, field := range fields {
		applyField(&product, field.Key, field.Value)
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

func applyField(p *models.Product, key string, value interface{}) {
	switch key {
	case "category":
		p.Category = value.(string)
	case "name":
		p.Name = value.(string)
	case "type":
		p.Type = value.(string)
	case "sizes":
		p.Sizes = value.([]string)
	case "colors":
		p.Colors = value.([]string)
	case "material":
		p.Material = value.(string)
	case "description":
		p.Description = value.(string)
	case "images":
		p.Images = value.([]models.ImageRef)
	case "countInStock":
		p.CountInStock = value.(int)
	case "price":
		p.Price = value.(float64)
	}
}

// Delete removes a product by its id.
func (r *MockProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	for i, stored := range r.order {
		if stored == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetUserReview returns the review a user left on a product.
func (r *MockProductRepository) GetUserReview(ctx context.Context, productID, userID string) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}
	for i := range product.Reviews {
		if product.Reviews[i].UserID == userID {
			return &product.Reviews[i], nil
		}
	}
	return nil, fmt.Errorf("review by user %q on product %q: %w", userID, productID, ErrNotFound)
}
