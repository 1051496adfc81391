package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is an already validated profile picture.
type Image struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Ext         string
}

// Service reads and edits accounts and their profiles.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateBuyerProfile(ctx context.Context, userID uuid.UUID, input BuyerProfileInput, image *Image) (*UserDTO, error)
	UpdateSellerProfile(ctx context.Context, userID uuid.UUID, input SellerProfileInput, image *Image) (*UserDTO, error)
}

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo      *Repository
	DB        *db.Client
	Storage   storage.Uploader
	KeyPrefix string
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	db        *db.Client
	storage   storage.Uploader
	keyPrefix string
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage uploader required")
	}
	return &service{
		repo:      params.Repo,
		db:        params.DB,
		storage:   params.Storage,
		keyPrefix: params.KeyPrefix,
		logg:      params.Logger,
	}, nil
}

// Me returns the account with every profile it owns.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.Profile, err = optional(s.repo.FindProfile(ctx, userID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	dto := FromModel(user)
	switch user.Role {
	case enums.UserRoleBuyer:
		buyer, err := optional(s.repo.FindBuyerProfile(ctx, userID))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer profile")
		}
		dto.withBuyer(buyer)
	case enums.UserRoleSeller:
		seller, err := optional(s.repo.FindSellerProfile(ctx, userID))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
		}
		dto.withSeller(seller)
	}
	return dto, nil
}

// UpdateBuyerProfile uploads image first, then writes the provided fields in
// one transaction.
func (s *service) UpdateBuyerProfile(ctx context.Context, userID uuid.UUID, input BuyerProfileInput, image *Image) (*UserDTO, error) {
	buyer := map[string]any{}
	if input.PhoneNumber != nil {
		buyer["phone_number"] = trimmed(*input.PhoneNumber)
	}
	if input.ShippingAddress != nil {
		buyer["shipping_address"] = trimmed(*input.ShippingAddress)
	}
	return s.updateProfile(ctx, userID, input.Name, image, func(r *Repository) error {
		return r.UpsertBuyerProfile(ctx, userID, buyer)
	})
}

// UpdateSellerProfile mirrors UpdateBuyerProfile for shop fields.
func (s *service) UpdateSellerProfile(ctx context.Context, userID uuid.UUID, input SellerProfileInput, image *Image) (*UserDTO, error) {
	seller := map[string]any{}
	if input.ShopName != nil {
		seller["shop_name"] = trimmed(*input.ShopName)
	}
	if input.ShopDescription != nil {
		seller["shop_description"] = trimmed(*input.ShopDescription)
	}
	if input.ShopAddress != nil {
		seller["shop_address"] = trimmed(*input.ShopAddress)
	}
	if input.PhoneNumber != nil {
		seller["phone_number"] = trimmed(*input.PhoneNumber)
	}
	return s.updateProfile(ctx, userID, input.Name, image, func(r *Repository) error {
		return r.UpsertSellerProfile(ctx, userID, seller)
	})
}

func (s *service) updateProfile(ctx context.Context, userID uuid.UUID, name *string, image *Image, roleUpdate func(*Repository) error) (*UserDTO, error) {
	profile := map[string]any{}
	if name != nil {
		value := strings.TrimSpace(*name)
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		profile["name"] = value
	}

	previous, err := optional(s.repo.FindProfile(ctx, userID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	var uploadedURL string
	if image != nil {
		uploadedURL, err = s.storage.Upload(ctx, storage.Object{
			Key:         storage.ObjectKey(s.keyPrefix, "users", userID, image.Ext),
			ContentType: image.ContentType,
			Size:        image.Size,
			Body:        image.Body,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload profile image")
		}
		profile["image_url"] = uploadedURL
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpsertProfile(ctx, userID, profile); err != nil {
			return err
		}
		return roleUpdate(txRepo)
	})
	if err != nil {
		if uploadedURL != "" {
			s.discard(ctx, uploadedURL)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}

	if uploadedURL != "" && previous != nil && previous.ImageURL != nil {
		s.discard(ctx, *previous.ImageURL)
	}
	return s.Me(ctx, userID)
}

// discard removes an object we uploaded. Failures only log: the profile row is
// already authoritative.
func (s *service) discard(ctx context.Context, rawURL string) {
	key, ok := s.storage.KeyFromURL(rawURL)
	if !ok {
		return
	}
	err := s.storage.Delete(ctx, key)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return
	}
	if s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "object_key", key), "profile.image_delete_failed", err)
	}
}

func optional[T any](value *T, err error) (*T, error) {
	if err != nil && repo.IsNotFound(err) {
		return nil, nil
	}
	return value, err
}

func trimmed(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
