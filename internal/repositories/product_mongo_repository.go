package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"katalog/internal/models"
)

// MongoProductRepository is a mongo-driver implementation of ProductRepository.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository
// backed by the "products" collection.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection("products")}
}

// List retrieves one page of products.
func (r *MongoProductRepository) List(ctx context.Context, skip, limit int64) ([]models.Product, error) {
	return r.findPage(ctx, bson.M{}, skip, limit)
}

// SearchByName retrieves one page of products whose name matches the term,
// case-insensitively.
func (r *MongoProductRepository) SearchByName(ctx context.Context, term string, skip, limit int64) ([]models.Product, error) {
	filter := bson.M{"name": bson.M{"$regex": term, "$options": "i"}}
	return r.findPage(ctx, filter, skip, limit)
}

func (r *MongoProductRepository) findPage(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// EstimatedCount returns the estimated total number of products.
func (r *MongoProductRepository) EstimatedCount(ctx context.Context) (int64, error) {
	count, err := r.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// GetByID retrieves a single product by its hex object id.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}

	var product models.Product
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product, assigning an id and timestamps.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateFields issues one $set with the given fields plus a fresh updatedAt.
func (r *MongoProductRepository) UpdateFields(ctx context.Context, id string, fields bson.D) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}

	set := make(bson.D, 0, len(fields)+1)
	set = append(set, fields...)
	set = append(set, bson.E{Key: "updatedAt", Value: time.Now()})

	res, err := r.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a product document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return nil
}

// GetUserReview returns the single review a user left on a product, using an
// $elemMatch projection so only that review is transferred.
func (r *MongoProductRepository) GetUserReview(ctx context.Context, productID, userID string) (*models.Review, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}

	filter := bson.M{"_id": oid, "reviews.userId": userID}
	opts := options.FindOne().SetProjection(bson.M{
		"reviews": bson.M{"$elemMatch": bson.M{"userId": userID}},
	})

	var result struct {
		Reviews []models.Review `bson:"reviews"`
	}
	err = r.coll.FindOne(ctx, filter, opts).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("review by user %q on product %q: %w", userID, productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review for product %s: %w", productID, err)
	}
	if len(result.Reviews) == 0 {
		return nil, fmt.Errorf("review by user %q on product %q: %w", userID, productID, ErrNotFound)
	}
	return &result.Reviews[0], nil
}
