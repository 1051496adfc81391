package models

import (
	"time"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the canonical identity for both buyers and sellers.
type User struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash *string            `gorm:"column:password_hash"`
	GoogleID     *string            `gorm:"column:google_id;uniqueIndex:users_google_id_key"`
	Provider     enums.AuthProvider `gorm:"column:provider;type:text;not null"`
	Role         enums.UserRole     `gorm:"column:role;type:text;not null"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	Profile      *Profile           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// HasPassword reports whether the account can sign in with local credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
