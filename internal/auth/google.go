package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/google"
)

// Google signs in with a Google ID token. An existing account matched by
// google id or email keeps its role; otherwise a new account is created with
// role.
func (s *service) Google(ctx context.Context, role enums.UserRole, req GoogleRequest) (*Response, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	identity, err := s.google.Verify(ctx, req.Token)
	switch {
	case errors.Is(err, google.ErrMissingEmail):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "google account has no email")
	case errors.Is(err, google.ErrNotConfigured):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "google sign-in unavailable")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid google token")
	}

	user, err := s.users.FindByGoogleIDOrEmail(ctx, identity.Subject, identity.Email)
	switch {
	case err == nil:
		if user.GoogleID == nil || *user.GoogleID == "" {
			if err := s.users.LinkGoogleID(ctx, user.ID, identity.Subject); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link google account")
			}
			user.GoogleID = &identity.Subject
		}
		return s.issue(ctx, user)
	case !repo.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	subject := identity.Subject
	user = &models.User{
		Email:    identity.Email,
		GoogleID: &subject,
		Provider: enums.AuthProviderGoogle,
		Role:     role,
	}
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = defaultName(identity.Email)
	}
	if err := s.createAccount(ctx, user, name, nil); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithRole(s.logg.WithUserID(ctx, user.ID.String()), role.String()), "auth.google_registered")
	}
	return s.issue(ctx, user)
}
