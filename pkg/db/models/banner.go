package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Banner is a promotional event shown on the storefront.
type Banner struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string         `gorm:"column:title;not null"`
	Description string         `gorm:"column:description;not null"`
	Images      pq.StringArray `gorm:"column:images;type:text[];not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
