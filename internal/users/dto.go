package users

import (
	"time"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	Role        enums.UserRole     `json:"role"`
	Provider    enums.AuthProvider `json:"provider"`
	LastLoginAt *time.Time         `json:"last_login_at,omitempty"`
	Profile     *ProfileDTO        `json:"profile,omitempty"`
	Buyer       *BuyerProfileDTO   `json:"buyer_profile,omitempty"`
	Seller      *SellerProfileDTO  `json:"seller_profile,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type ProfileDTO struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

type BuyerProfileDTO struct {
	PhoneNumber     *string `json:"phone_number"`
	ShippingAddress *string `json:"shipping_address"`
}

type SellerProfileDTO struct {
	ID              uuid.UUID `json:"id"`
	ShopName        *string   `json:"shop_name"`
	ShopDescription *string   `json:"shop_description"`
	ShopAddress     *string   `json:"shop_address"`
	PhoneNumber     *string   `json:"phone_number"`
}

// FromModel maps a user and whichever profiles were loaded.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Provider:    u.Provider,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Profile != nil {
		dto.Profile = &ProfileDTO{Name: u.Profile.Name, ImageURL: u.Profile.ImageURL}
	}
	return dto
}

func (d *UserDTO) withBuyer(p *models.BuyerProfile) {
	if p != nil {
		d.Buyer = &BuyerProfileDTO{PhoneNumber: p.PhoneNumber, ShippingAddress: p.ShippingAddress}
	}
}

func (d *UserDTO) withSeller(p *models.SellerProfile) {
	if p != nil {
		d.Seller = &SellerProfileDTO{
			ID:              p.ID,
			ShopName:        p.ShopName,
			ShopDescription: p.ShopDescription,
			ShopAddress:     p.ShopAddress,
			PhoneNumber:     p.PhoneNumber,
		}
	}
}

// BuyerProfileInput carries the multipart fields of a buyer profile edit.
// Nil fields are left unchanged.
type BuyerProfileInput struct {
	Name            *string
	PhoneNumber     *string
	ShippingAddress *string
}

// SellerProfileInput carries the multipart fields of a seller profile edit.
type SellerProfileInput struct {
	Name            *string
	ShopName        *string
	ShopDescription *string
	ShopAddress     *string
	PhoneNumber     *string
}
