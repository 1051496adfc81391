package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	pkgAuth "github.com/angelmondragon/bazaar-backend/pkg/auth"
	"github.com/angelmondragon/bazaar-backend/pkg/auth/session"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/google"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/security"
	"github.com/google/uuid"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, role enums.UserRole, req RegisterRequest) (*Response, error)
	Login(ctx context.Context, req LoginRequest) (*Response, error)
	Google(ctx context.Context, role enums.UserRole, req GoogleRequest) (*Response, error)
	Refresh(ctx context.Context, req RefreshRequest) (*Response, error)
	Logout(ctx context.Context, accessID string) error
}

type sessionManager interface {
	Start(ctx context.Context, userID uuid.UUID) (session.Issued, error)
	Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (session.Issued, error)
	Revoke(ctx context.Context, accessID string) error
}

type profileReader interface {
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB             *db.Client
	UserRepo       *users.Repository
	Profiles       profileReader
	SessionManager sessionManager
	Google         google.Verifier
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	db       *db.Client
	users    *users.Repository
	profiles profileReader
	session  sessionManager
	google   google.Verifier
	jwtCfg   config.JWTConfig
	hasher   *security.Hasher
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile reader is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Google == nil {
		return nil, fmt.Errorf("google verifier is required")
	}
	return &service{
		db:       params.DB,
		users:    params.UserRepo,
		profiles: params.Profiles,
		session:  params.SessionManager,
		google:   params.Google,
		jwtCfg:   params.JWTConfig,
		hasher:   security.NewHasher(params.PasswordConfig),
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Login distinguishes an unknown email, a Google-only account, and a wrong
// password.
func (s *service) Login(ctx context.Context, req LoginRequest) (*Response, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if !user.HasPassword() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please login with Google")
	}

	valid, err := s.hasher.Verify(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if s.hasher.NeedsRehash(*user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, req.Password)
	}
	return s.issue(ctx, user)
}

// Refresh rotates the session named by the access token's jti. The access
// token may already be expired but must carry a valid signature.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*Response, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	issued, err := s.session.Rotate(ctx, claims.AccessID(), user.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	return s.respond(ctx, user, issued)
}

// Logout revokes the session behind accessID.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issue(ctx context.Context, user *models.User) (*Response, error) {
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	issued, err := s.session.Start(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return s.respond(ctx, user, issued)
}

func (s *service) respond(ctx context.Context, user *models.User, issued session.Issued) (*Response, error) {
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    issued.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	dto, err := s.profiles.Me(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Response{AccessToken: accessToken, RefreshToken: issued.RefreshToken, User: dto}, nil
}

// upgradeHash replaces an outdated hash after a successful login. The login
// already succeeded, so failures only log.
func (s *service) upgradeHash(ctx context.Context, userID uuid.UUID, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "auth.rehash_failed", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
