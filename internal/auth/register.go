package auth

import (
	"context"
	"strings"

	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"gorm.io/gorm"
)

// Register creates a local account for role together with its profiles.
func (s *service) Register(ctx context.Context, role enums.UserRole, req RegisterRequest) (*Response, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: &passwordHash,
		Provider:     enums.AuthProviderLocal,
		Role:         role,
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultName(email)
	}
	if err := s.createAccount(ctx, user, name, req.PhoneNumber); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithRole(s.logg.WithUserID(ctx, user.ID.String()), role.String()), "auth.registered")
	}
	return s.issue(ctx, user)
}

// createAccount writes the user, the shared profile and the role profile in
// one transaction.
func (s *service) createAccount(ctx context.Context, user *models.User, name string, phone *string) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.users.WithTx(tx)
		if err := txRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := txRepo.CreateProfile(ctx, &models.Profile{UserID: user.ID, Name: name}); err != nil {
			return err
		}
		phone = trimmedPtr(phone)
		if user.Role == enums.UserRoleSeller {
			return txRepo.CreateSellerProfile(ctx, &models.SellerProfile{UserID: user.ID, PhoneNumber: phone})
		}
		return txRepo.CreateBuyerProfile(ctx, &models.BuyerProfile{UserID: user.ID, PhoneNumber: phone})
	})
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, users.EmailConstraint):
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	case db.IsUniqueViolation(err, users.GoogleIDConstraint):
		return pkgerrors.New(pkgerrors.CodeConflict, "google account already linked")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
}

func defaultName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	value := strings.TrimSpace(*v)
	if value == "" {
		return nil
	}
	return &value
}
