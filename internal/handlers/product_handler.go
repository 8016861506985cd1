package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
// The search route must be registered before the parameterized get-by-id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/search/:term", h.HandleSearchProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Get("/:id/reviews/:userId", h.HandleGetUserReview)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// respondError maps service error kinds onto HTTP statuses.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// HandleListProducts retrieves one page of the catalog.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))

	result, err := h.service.ListProducts(c.Context(), page)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	if len(result.Products) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(result)
}

// HandleSearchProducts retrieves one page of products matching the search
// term, case-insensitively.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))

	result, err := h.service.SearchProducts(c.Context(), c.Params("term"), page)
	if err != nil {
		return respondError(c, err, "Could not search products")
	}
	if len(result.Products) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(result)
}

// HandleGetProduct retrieves a single product by its id.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Product not found")
	}
	return c.JSON(product)
}

// HandleGetUserReview returns the review a user left on a product.
func (h *ProductHandler) HandleGetUserReview(c *fiber.Ctx) error {
	review, err := h.service.GetUserReview(c.Context(), c.Params("id"), c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Product or review not found")
	}
	return c.JSON(review)
}

// HandleCreateProduct creates a new product. Admin only.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	product, err := h.service.CreateProduct(c.Context(), middleware.IsAdmin(c), &req)
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Created successfully",
		"product": product,
	})
}

// HandleUpdateProduct applies a partial update to a product. Admin only,
// though a missing product answers 404 before the admin check.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.UpdateProduct(c.Context(), c.Params("id"), middleware.IsAdmin(c), &patch); err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(fiber.Map{"message": "Successfully updated!"})
}

// HandleDeleteProduct removes a product and its media assets. Admin only.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Context(), c.Params("id"), middleware.IsAdmin(c)); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{"message": "Deleted successfully"})
}
