package domain

import "time"

// ProductStatus enumerates listing lifecycle states.
type ProductStatus string

const (
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusSold     ProductStatus = "SOLD"
	ProductStatusDeleted  ProductStatus = "DELETED"
)

// Valid reports whether s is a known status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusInactive, ProductStatusActive, ProductStatusSold, ProductStatusDeleted:
		return true
	}
	return false
}

// Public reports whether listings in this status are visible to everyone.
func (s ProductStatus) Public() bool {
	return s == ProductStatusActive || s == ProductStatusSold
}

// ListingType distinguishes sale, auction and wanted listings.
type ListingType string

const (
	ListingTypeSale    ListingType = "SALE"
	ListingTypeAuction ListingType = "AUCTION"
	ListingTypeRequest ListingType = "REQUEST"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingTypeSale || t == ListingTypeAuction || t == ListingTypeRequest
}

// Product is a marketplace listing owned by exactly one user.
type Product struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	Price        float64
	Currency     string
	Category     string
	ListingType  ListingType
	Location     string
	ContactPhone *string
	Images       []string
	Status       ProductStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
