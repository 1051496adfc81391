package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name         string
	Description  *string
	ImageURL     *string
	SKU          *string
	Price        decimal.Decimal
	Stock        int
	CategoryName string
}

// UpdateProductInput holds optional mutation values for a product. A nil
// field is left untouched.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	ImageURL     *string
	SKU          *string
	Price        *decimal.Decimal
	Stock        *int
	CategoryName *string
}

// TaxonomyRefDTO names the node a product is filed under.
type TaxonomyRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ProductDTO is the API representation of a product.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	SellerProfileID uuid.UUID       `json:"seller_profile_id"`
	ShopName        *string         `json:"shop_name,omitempty"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	ImageURL        *string         `json:"image_url"`
	SKU             *string         `json:"sku"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	LikesCount      int64           `json:"likes_count"`
	Category        *TaxonomyRefDTO `json:"category,omitempty"`
	Subcategory     *TaxonomyRefDTO `json:"subcategory,omitempty"`
	Liked           *bool           `json:"liked,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func newProductDTO(r productRecord) ProductDTO {
	dto := ProductDTO{
		ID:              r.ID,
		SellerProfileID: r.SellerProfileID,
		ShopName:        r.ShopName,
		Name:            r.Name,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		SKU:             r.SKU,
		Price:           r.Price,
		Stock:           r.Stock,
		LikesCount:      r.LikesCount,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	switch {
	case r.CategoryID != nil:
		dto.Category = &TaxonomyRefDTO{ID: *r.CategoryID, Name: deref(r.CategoryName)}
	case r.SubcategoryID != nil:
		dto.Subcategory = &TaxonomyRefDTO{ID: *r.SubcategoryID, Name: deref(r.SubcategoryName)}
		if r.ParentCategoryID != nil {
			dto.Category = &TaxonomyRefDTO{ID: *r.ParentCategoryID, Name: deref(r.ParentCategoryName)}
		}
	}
	return dto
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
