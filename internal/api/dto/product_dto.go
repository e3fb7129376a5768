package dto

import (
	"time"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
)

// CreateProductRequest payload.
type CreateProductRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// UpdateProductRequest is a partial update. vendorId is not accepted.
type UpdateProductRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	VendorID  string    `json:"vendorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductPageResponse is the pagination envelope.
type ProductPageResponse struct {
	Products      []ProductResponse `json:"products"`
	TotalProducts int               `json:"totalProducts"`
	TotalPages    int               `json:"totalPages"`
	CurrentPage   int               `json:"currentPage"`
}

// ProductMessageResponse pairs a status message with a product.
type ProductMessageResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// MessageResponse is a bare status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToProductResponse maps a domain product.
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		VendorID:  p.VendorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToProductPageResponse maps a listing page.
func ToProductPageResponse(page *service.ProductPage) ProductPageResponse {
	products := make([]ProductResponse, 0, len(page.Products))
	for i := range page.Products {
		products = append(products, ToProductResponse(&page.Products[i]))
	}
	return ProductPageResponse{
		Products:      products,
		TotalProducts: page.Total,
		TotalPages:    page.TotalPages,
		CurrentPage:   page.CurrentPage,
	}
}

// ToServicePatch converts the request into a service patch.
func (r UpdateProductRequest) ToServicePatch() service.ProductPatch {
	return service.ProductPatch{Name: r.Name, Price: r.Price, Category: r.Category}
}
