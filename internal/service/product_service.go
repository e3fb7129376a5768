package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductService implements catalog operations. Mutations of an existing
// product go through the resource-scoped access pipeline.
type ProductService struct {
	products repository.ProductRepository
	users    repository.UserRepository
}

// ProductDependencies bundles repositories for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
}

// ProductInput is the create payload.
type ProductInput struct {
	Name     string
	Price    float64
	Category string
}

// ProductPatch is a partial update. Nil fields are left unchanged.
type ProductPatch struct {
	Name     *string
	Price    *float64
	Category *string
}

// PageRequest selects a page. Zero values take the defaults.
type PageRequest struct {
	Page  int
	Limit int
}

// ProductPage is one page of a listing.
type ProductPage struct {
	Products    []domain.Product
	Total       int
	TotalPages  int
	CurrentPage int
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{products: deps.ProductRepo, users: deps.UserRepo}
}

// Create stores a product owned by the caller.
func (s *ProductService) Create(ctx context.Context, identity domain.Identity, input ProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	if err := validateProduct(input.Name, input.Category, input.Price); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, identity.SubjectID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	product := &domain.Product{
		Name:     input.Name,
		Price:    input.Price,
		Category: input.Category,
		VendorID: identity.SubjectID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Get returns a product by id. Ids that are not UUIDs are reported as not
// found.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, productNotFound(id)
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, productNotFound(id)
		}
		return nil, err
	}
	return product, nil
}

// Update applies patch to a product the caller owns.
func (s *ProductService) Update(ctx context.Context, identity domain.Identity, id string, patch ProductPatch) (*domain.Product, error) {
	product, err := s.authorize(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		product.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if err := validateProduct(product.Name, product.Category, product.Price); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		if repository.IsNotFound(err) {
			return nil, productNotFound(id)
		}
		return nil, err
	}
	return product, nil
}

// Delete removes a product the caller owns.
func (s *ProductService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if _, err := s.authorize(ctx, identity, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return productNotFound(id)
		}
		return err
	}
	return nil
}

// List pages through the whole catalog, newest first.
func (s *ProductService) List(ctx context.Context, page PageRequest) (*ProductPage, error) {
	return s.list(ctx, repository.ProductFilter{}, page)
}

// ListVendor pages through the caller's own products.
func (s *ProductService) ListVendor(ctx context.Context, identity domain.Identity, page PageRequest) (*ProductPage, error) {
	vendorID := identity.SubjectID
	return s.list(ctx, repository.ProductFilter{VendorID: &vendorID}, page)
}

// Search matches query against name or category, case-insensitively.
func (s *ProductService) Search(ctx context.Context, query string, page PageRequest) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("search query is required", map[string]any{"query": "must not be empty"})
	}
	return s.list(ctx, repository.ProductFilter{Search: &query}, page)
}

func (s *ProductService) authorize(ctx context.Context, identity domain.Identity, id string) (*domain.Product, error) {
	decision := auth.AuthorizeResource(ctx, identity, func(ctx context.Context) (domain.Owned, error) {
		product, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return product, nil
	})
	if !decision.Authorized() {
		return nil, decision.Err()
	}
	return decision.Resource.(*domain.Product), nil
}

func (s *ProductService) list(ctx context.Context, filter repository.ProductFilter, page PageRequest) (*ProductPage, error) {
	page = normalizePageRequest(page)
	filter.Limit = page.Limit
	filter.Offset = (page.Page - 1) * page.Limit

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &ProductPage{
		Products:    products,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(page.Limit))),
		CurrentPage: page.Page,
	}, nil
}

func normalizePageRequest(page PageRequest) PageRequest {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}
	if page.Limit > MaxPageSize {
		page.Limit = MaxPageSize
	}
	return page
}

func validateProduct(name, category string, price float64) error {
	details := map[string]any{}
	if name == "" {
		details["name"] = "name is required"
	}
	if category == "" {
		details["category"] = "category is required"
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		details["price"] = "price must be a non-negative number"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product payload", details)
	}
	return nil
}

func productNotFound(id string) error {
	return apperrors.NewNotFound("product", map[string]any{"id": id})
}
