package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a seller listing. Exactly one of CategoryID / SubcategoryID is
// set; application code goes through taxonomy.Placement instead of the raw
// columns.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerProfileID uuid.UUID       `gorm:"column:seller_profile_id;type:uuid;not null;index:products_seller_profile_id_idx"`
	Name            string          `gorm:"column:name;not null"`
	Description     *string         `gorm:"column:description"`
	ImageURL        *string         `gorm:"column:image_url"`
	SKU             *string         `gorm:"column:sku;uniqueIndex:products_sku_key"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Stock           int             `gorm:"column:stock;not null;default:0"`
	LikesCount      int64           `gorm:"column:likes_count;not null;default:0"`
	CategoryID      *uuid.UUID      `gorm:"column:category_id;type:uuid;index:products_category_id_idx"`
	SubcategoryID   *uuid.UUID      `gorm:"column:subcategory_id;type:uuid;index:products_subcategory_id_idx"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ProductLike links a user to a product they liked.
type ProductLike struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:product_likes_user_product_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_likes_user_product_key;index:product_likes_product_id_idx"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *ProductLike) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
