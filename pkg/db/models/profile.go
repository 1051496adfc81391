package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile holds the display fields shared by every account.
type Profile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:profiles_user_id_key"`
	Name      string    `gorm:"column:name;not null;default:''"`
	ImageURL  *string   `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// BuyerProfile carries buyer-only contact and shipping details.
type BuyerProfile struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:buyer_profiles_user_id_key"`
	PhoneNumber     *string   `gorm:"column:phone_number"`
	ShippingAddress *string   `gorm:"column:shipping_address"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *BuyerProfile) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// SellerProfile is the shop a seller lists products under.
type SellerProfile struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:seller_profiles_user_id_key"`
	ShopName        *string   `gorm:"column:shop_name"`
	ShopDescription *string   `gorm:"column:shop_description"`
	ShopAddress     *string   `gorm:"column:shop_address"`
	PhoneNumber     *string   `gorm:"column:phone_number"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *SellerProfile) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
