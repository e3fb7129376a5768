package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// ProductsHandler manages catalog endpoints.
type ProductsHandler struct {
	service *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{service: productService}
}

// Create POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.service.Create(c.UserContext(), identity, service.ProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.ToProductResponse(product))
}

// Get GET /api/products/:id. Public.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToProductResponse(product))
}

// Update PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.service.Update(c.UserContext(), identity, c.Params("id"), req.ToServicePatch())
	if err != nil {
		return err
	}
	return c.JSON(dto.ProductMessageResponse{
		Message: "Product updated successfully",
		Product: dto.ToProductResponse(product),
	})
}

// Delete DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Product deleted successfully"})
}

// List GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToProductPageResponse(page))
}

// ListVendor GET /api/products/vendor.
func (h *ProductsHandler) ListVendor(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListVendor(c.UserContext(), identity, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToProductPageResponse(page))
}

// Search GET /api/products/search?query=.
func (h *ProductsHandler) Search(c *fiber.Ctx) error {
	page, err := h.service.Search(c.UserContext(), c.Query("query"), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToProductPageResponse(page))
}

// pageRequest reads page and limit. Unparseable values fall back to the
// defaults.
func pageRequest(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", service.DefaultPageSize),
	}
}

func requireIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, auth.ErrMissingToken
	}
	return identity, nil
}
