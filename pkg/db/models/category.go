package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a top level taxonomy node. ProductCount is derived and only
// written by the taxonomy counter engine.
type Category struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string        `gorm:"column:name;not null"`
	Icon          string        `gorm:"column:icon;not null"`
	Color         string        `gorm:"column:color;not null"`
	Image         string        `gorm:"column:image;not null"`
	ProductCount  int64         `gorm:"column:product_count;not null;default:0"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID   uuid.UUID `gorm:"column:category_id;type:uuid;not null;index:subcategories_category_id_idx"`
	Name         string    `gorm:"column:name;not null"`
	Image        *string   `gorm:"column:image"`
	ProductCount int64     `gorm:"column:product_count;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Subcategory) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
