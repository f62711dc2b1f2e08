package dto

import (
	"time"

	"github.com/souqna/marketplace/internal/domain"
)

// CreateProductRequest payload.
type CreateProductRequest struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Price        *float64           `json:"price"`
	Currency     string             `json:"currency"`
	Category     string             `json:"category"`
	ListingType  domain.ListingType `json:"listingType"`
	Location     string             `json:"location"`
	ContactPhone *string            `json:"contactPhone"`
	Images       []string           `json:"images"`
}

// UpdateProductRequest payload. Absent fields are left unchanged.
type UpdateProductRequest struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Price        *float64              `json:"price"`
	Currency     *string               `json:"currency"`
	Category     *string               `json:"category"`
	ListingType  *domain.ListingType   `json:"listingType"`
	Location     *string               `json:"location"`
	ContactPhone *string               `json:"contactPhone"`
	Images       []string              `json:"images"`
	Status       *domain.ProductStatus `json:"status"`
}

// ProductResponse is the listing representation.
type ProductResponse struct {
	ID           string               `json:"id"`
	OwnerID      string               `json:"ownerId"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Price        float64              `json:"price"`
	Currency     string               `json:"currency"`
	Category     string               `json:"category"`
	ListingType  domain.ListingType   `json:"listingType"`
	Location     string               `json:"location"`
	ContactPhone *string              `json:"contactPhone"`
	Images       []string             `json:"images"`
	Status       domain.ProductStatus `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(p *domain.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		Currency:     p.Currency,
		Category:     p.Category,
		ListingType:  p.ListingType,
		Location:     p.Location,
		ContactPhone: p.ContactPhone,
		Images:       images,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// NewProductList maps a page of products.
func NewProductList(products []domain.Product) []ProductResponse {
	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, NewProductResponse(&products[i]))
	}
	return items
}
