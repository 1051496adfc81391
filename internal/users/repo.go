package users

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	EmailConstraint    = "users_email_key"
	GoogleIDConstraint = "users_google_id_key"
)

// Repository exposes user and profile persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// Create inserts the user row only.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.DB(ctx).Omit(clause.Associations).Create(user).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByGoogleIDOrEmail prefers the google_id match when both exist. The
// email lookup only runs when no account holds googleID.
func (r *Repository) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).Where("google_id = ?", googleID).Take(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) || email == "" {
		return nil, err
	}
	if err := r.DB(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored hash, used when upgrading legacy hashes.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// LinkGoogleID attaches a google subject to an existing account.
func (r *Repository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("google_id", googleID).Error
}

func (r *Repository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.DB(ctx).Create(profile).Error
}

func (r *Repository) CreateBuyerProfile(ctx context.Context, profile *models.BuyerProfile) error {
	return r.DB(ctx).Create(profile).Error
}

func (r *Repository) CreateSellerProfile(ctx context.Context, profile *models.SellerProfile) error {
	return r.DB(ctx).Create(profile).Error
}

// FindProfile loads the shared display profile.
func (r *Repository) FindProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) FindBuyerProfile(ctx context.Context, userID uuid.UUID) (*models.BuyerProfile, error) {
	var profile models.BuyerProfile
	if err := r.DB(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindSellerProfile loads the shop a seller lists under.
func (r *Repository) FindSellerProfile(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := r.DB(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile writes columns to the user's profile, creating it when absent.
func (r *Repository) UpsertProfile(ctx context.Context, userID uuid.UUID, columns map[string]any) error {
	return upsert(r.DB(ctx), &models.Profile{UserID: userID}, userID, columns)
}

func (r *Repository) UpsertBuyerProfile(ctx context.Context, userID uuid.UUID, columns map[string]any) error {
	return upsert(r.DB(ctx), &models.BuyerProfile{UserID: userID}, userID, columns)
}

func (r *Repository) UpsertSellerProfile(ctx context.Context, userID uuid.UUID, columns map[string]any) error {
	return upsert(r.DB(ctx), &models.SellerProfile{UserID: userID}, userID, columns)
}

// upsert creates an empty row keyed by user_id if needed, then applies only
// the provided columns.
func upsert(db *gorm.DB, model any, userID uuid.UUID, columns map[string]any) error {
	if err := db.Where("user_id = ?", userID).FirstOrCreate(model).Error; err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	return db.Model(model).Where("user_id = ?", userID).Updates(columns).Error
}
