package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"katalog/internal/config"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/pkg/media"
	"katalog/pkg/rabbitmq"
)

// CleanupPublisher enqueues compensating media-cleanup tasks for assets the
// request could not delete, or uploaded before a later step failed.
type CleanupPublisher interface {
	PublishCleanup(task rabbitmq.CleanupTask) error
}

// ProductService handles catalog business logic: listing, search, CRUD and
// the partial-update reconciliation against the media store.
type ProductService struct {
	repo    repositories.ProductRepository
	media   media.Uploader
	cleanup CleanupPublisher
	cfg     *config.Config
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, uploader media.Uploader, cleanup CleanupPublisher, cfg *config.Config) *ProductService {
	return &ProductService{
		repo:    repo,
		media:   uploader,
		cleanup: cleanup,
		cfg:     cfg,
	}
}

// ProductPage bundles one page of products with its pagination metadata.
type ProductPage struct {
	Products   []models.Product  `json:"allProducts"`
	Pagination models.Pagination `json:"pagination"`
}

// ListProducts retrieves one page of the catalog.
func (s *ProductService) ListProducts(ctx context.Context, page int) (*ProductPage, error) {
	return s.pageOf(ctx, page, s.cfg.ItemsPerPage, func(skip, limit int64) ([]models.Product, error) {
		return s.repo.List(ctx, skip, limit)
	})
}

// SearchProducts retrieves one page of products whose name matches the term,
// case-insensitively. Search uses its own page size.
func (s *ProductService) SearchProducts(ctx context.Context, term string, page int) (*ProductPage, error) {
	return s.pageOf(ctx, page, s.cfg.SearchItemsPerPage, func(skip, limit int64) ([]models.Product, error) {
		return s.repo.SearchByName(ctx, term, skip, limit)
	})
}

// pageOf runs a paginated fetch: skip = (page-1)*pageSize, and pageCount is
// the raw quotient of total count by page size, not rounded.
func (s *ProductService) pageOf(ctx context.Context, page, pageSize int, fetch func(skip, limit int64) ([]models.Product, error)) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	skip := int64(page-1) * int64(pageSize)

	count, err := s.repo.EstimatedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	products, err := fetch(skip, int64(pageSize))
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products: products,
		Pagination: models.Pagination{
			Count:     count,
			PageCount: float64(count) / float64(pageSize),
		},
	}, nil
}

// GetProduct retrieves a single product by its id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetUserReview returns the single review the given user left on the given
// product.
func (s *ProductService) GetUserReview(ctx context.Context, productID, userID string) (*models.Review, error) {
	return s.repo.GetUserReview(ctx, productID, userID)
}

// CreateProduct uploads the submitted image payloads to the media store and
// inserts the product document. Admin only.
func (s *ProductService) CreateProduct(ctx context.Context, isAdmin bool, req *models.CreateProductRequest) (*models.Product, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}

	var images []models.ImageRef
	for _, payload := range req.UploadImg {
		ref, err := s.media.Upload(ctx, payload)
		if err != nil {
			s.enqueueCleanupRefs(images, "create aborted after partial upload")
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
		images = append(images, ref)
	}

	product := &models.Product{
		Category:     req.Category,
		Name:         req.Name,
		Type:         req.Type,
		Sizes:        strings.Split(req.Sizes, sizesDelimiter),
		Colors:       strings.Split(req.Colors, colorsDelimiter),
		Material:     req.Material,
		Description:  req.Description,
		CountInStock: req.CountInStock,
		Price:        req.Price,
		Images:       images,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		s.enqueueCleanupRefs(images, "create failed after upload")
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies a partial update: it validates the patch, diffs it
// against the stored product, reconciles the image set with the media store
// and issues a single atomic partial write containing every changed field.
// A patch that changes nothing still succeeds.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, isAdmin bool, patch *models.ProductPatch) error {
	if id == "" {
		return fmt.Errorf("%w: product id is empty", ErrValidation)
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	old, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// The admin gate sits after the lookup on purpose: a missing product
	// answers "not found" even to unauthorized callers.
	if !isAdmin {
		return ErrForbidden
	}

	changes := planScalarChanges(old, patch)

	// Numeric fields are validated before any media side effect runs, so a
	// bad countInStock/price cannot leave orphaned or half-deleted assets.
	numeric, err := planNumericChanges(old, patch)
	if err != nil {
		return err
	}

	plan := planImageChanges(patch)
	for _, externalID := range plan.destroy {
		if err := s.media.Destroy(ctx, externalID); err != nil {
			log.Printf("Failed to delete image %s, scheduling cleanup: %v", externalID, err)
			s.enqueueCleanup([]string{externalID}, "update could not delete image")
		}
	}

	var uploaded []models.ImageRef
	for _, payload := range plan.uploads {
		ref, err := s.media.Upload(ctx, payload)
		if err != nil {
			s.enqueueCleanupRefs(uploaded, "update aborted after partial upload")
			return fmt.Errorf("failed to upload product image: %w", err)
		}
		uploaded = append(uploaded, ref)
	}

	if final := finalImageSet(plan.retained, uploaded); len(final) > 0 {
		changes = append(changes, bson.E{Key: "images", Value: final})
	}
	changes = append(changes, numeric...)

	if len(changes) == 0 {
		return nil
	}
	if err := s.repo.UpdateFields(ctx, id, changes); err != nil {
		return fmt.Errorf("failed to persist product update: %w", err)
	}
	return nil
}

// DeleteProduct releases every image asset of the product before removing
// the record. Asset deletion is best-effort: one destroy call per entry is
// issued regardless of earlier outcomes, and failures are queued for
// compensating cleanup.
func (s *ProductService) DeleteProduct(ctx context.Context, id string, isAdmin bool) error {
	if !isAdmin {
		return ErrForbidden
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var failed []string
	for _, img := range product.Images {
		if err := s.media.Destroy(ctx, img.ExternalID); err != nil {
			log.Printf("Failed to delete image %s for product %s: %v", img.ExternalID, id, err)
			failed = append(failed, img.ExternalID)
		}
	}
	s.enqueueCleanup(failed, "delete could not release all images")

	return s.repo.Delete(ctx, id)
}

func (s *ProductService) enqueueCleanupRefs(refs []models.ImageRef, reason string) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ExternalID)
	}
	s.enqueueCleanup(ids, reason)
}

// enqueueCleanup hands orphaned or undeletable assets to the cleanup queue.
// Publishing failures are logged; at that point there is nothing left to
// compensate with.
func (s *ProductService) enqueueCleanup(ids []string, reason string) {
	if len(ids) == 0 || s.cleanup == nil {
		return
	}
	task := rabbitmq.CleanupTask{ExternalIDs: ids, Reason: reason}
	if err := s.cleanup.PublishCleanup(task); err != nil {
		log.Printf("Failed to publish media cleanup task (%s): %v", reason, err)
	}
}
