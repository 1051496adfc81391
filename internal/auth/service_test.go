package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/bazaar-backend/internal/users"
	pkgAuth "github.com/angelmondragon/bazaar-backend/pkg/auth"
	"github.com/angelmondragon/bazaar-backend/pkg/auth/session"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/google"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	testJWT = config.JWTConfig{Secret: "secret", Issuer: "bazaar-test", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60}
	testPwd = config.PasswordConfig{ArgonMemoryKB: 8 * 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

type memorySessions struct {
	live map[string]struct {
		user  uuid.UUID
		token string
	}
	revoked []string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{live: map[string]struct {
		user  uuid.UUID
		token string
	}{}}
}

func (m *memorySessions) Start(_ context.Context, userID uuid.UUID) (session.Issued, error) {
	issued := session.Issued{AccessID: uuid.NewString(), RefreshToken: uuid.NewString()}
	m.live[issued.AccessID] = struct {
		user  uuid.UUID
		token string
	}{userID, issued.RefreshToken}
	return issued, nil
}

func (m *memorySessions) Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (session.Issued, error) {
	rec, ok := m.live[oldAccessID]
	if !ok || rec.user != userID || rec.token != provided {
		return session.Issued{}, session.ErrInvalidRefreshToken
	}
	delete(m.live, oldAccessID)
	return m.Start(ctx, userID)
}

func (m *memorySessions) Revoke(_ context.Context, accessID string) error {
	delete(m.live, accessID)
	m.revoked = append(m.revoked, accessID)
	return nil
}

type stubVerifier struct {
	identity google.Identity
	err      error
}

func (s stubVerifier) Verify(context.Context, string) (google.Identity, error) {
	return s.identity, s.err
}

type repoProfiles struct {
	repo *users.Repository
}

func (p repoProfiles) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := p.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

type fixture struct {
	db       *gorm.DB
	sessions *memorySessions
	svc      Service
}

func newFixture(t *testing.T, verifier google.Verifier) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := users.NewRepository(conn)
	sessions := newMemorySessions()
	if verifier == nil {
		verifier = stubVerifier{err: google.ErrNotConfigured}
	}
	svc, err := NewService(ServiceParams{
		DB:             db.Wrap(conn),
		UserRepo:       repo,
		Profiles:       repoProfiles{repo: repo},
		SessionManager: sessions,
		Google:         verifier,
		JWTConfig:      testJWT,
		PasswordConfig: testPwd,
		Logger:         logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return &fixture{db: conn, sessions: sessions, svc: svc}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestRegisterSellerCreatesProfiles(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.svc.Register(context.Background(), enums.UserRoleSeller, RegisterRequest{
		Email:    " Shop@Example.com ",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", resp.User.Email)
	assert.Equal(t, enums.UserRoleSeller, resp.User.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Contains(t, f.sessions.live, claims.ID)

	assert.EqualValues(t, 1, f.count(t, &models.Profile{}))
	assert.EqualValues(t, 1, f.count(t, &models.SellerProfile{}))
	assert.Zero(t, f.count(t, &models.BuyerProfile{}))

	var profile models.Profile
	require.NoError(t, f.db.First(&profile).Error)
	assert.Equal(t, "shop", profile.Name)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t, nil)
	req := RegisterRequest{Email: "dup@example.com", Password: "correct-horse"}

	_, err := f.svc.Register(context.Background(), enums.UserRoleBuyer, req)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), enums.UserRoleSeller, req)

	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.EqualValues(t, 1, f.count(t, &models.Profile{}))
}

func TestLoginOutcomes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, enums.UserRoleBuyer, RegisterRequest{Email: "buyer@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	googleOnly := &models.User{Email: "g@example.com", Provider: enums.AuthProviderGoogle, Role: enums.UserRoleBuyer}
	require.NoError(t, f.db.Create(googleOnly).Error)

	cases := []struct {
		name string
		req  LoginRequest
		code pkgerrors.Code
	}{
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "x"}, pkgerrors.CodeNotFound},
		{"google only", LoginRequest{Email: "g@example.com", Password: "x"}, pkgerrors.CodeValidation},
		{"wrong password", LoginRequest{Email: "buyer@example.com", Password: "wrong"}, pkgerrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tc.req)
			assert.Equal(t, tc.code, pkgerrors.CodeOf(err))
		})
	}

	resp, err := f.svc.Login(ctx, LoginRequest{Email: "BUYER@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestLoginUpgradesLegacyBcryptHash(t *testing.T) {
	f := newFixture(t, nil)
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(legacy)
	user := &models.User{Email: "legacy@example.com", PasswordHash: &hash, Provider: enums.AuthProviderLocal, Role: enums.UserRoleBuyer}
	require.NoError(t, f.db.Create(user).Error)

	_, err = f.svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "old-secret"})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", user.ID).Error)
	assert.Contains(t, *stored.PasswordHash, "$argon2id$")
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	first, err := f.svc.Register(ctx, enums.UserRoleBuyer, RegisterRequest{Email: "r@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, RefreshRequest{AccessToken: first.AccessToken, RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.Refresh(ctx, RefreshRequest{AccessToken: first.AccessToken, RefreshToken: first.RefreshToken})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, enums.UserRoleBuyer, RegisterRequest{Email: "e@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)

	expired, err := pkgAuth.MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    claims.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, RefreshRequest{AccessToken: expired, RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
}

func TestLogoutRevokes(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.svc.Logout(context.Background(), "access-1"))

	assert.Equal(t, []string{"access-1"}, f.sessions.revoked)
}

func TestGoogleCreatesAccount(t *testing.T) {
	f := newFixture(t, stubVerifier{identity: google.Identity{Subject: "sub-1", Email: "new@example.com", Name: "New Person"}})

	resp, err := f.svc.Google(context.Background(), enums.UserRoleSeller, GoogleRequest{Token: "tok"})

	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleSeller, resp.User.Role)
	assert.Equal(t, enums.AuthProviderGoogle, resp.User.Provider)
	assert.EqualValues(t, 1, f.count(t, &models.SellerProfile{}))

	var profile models.Profile
	require.NoError(t, f.db.First(&profile).Error)
	assert.Equal(t, "New Person", profile.Name)
}

func TestGoogleLinksExistingEmailAndKeepsRole(t *testing.T) {
	f := newFixture(t, stubVerifier{identity: google.Identity{Subject: "sub-2", Email: "buyer@example.com"}})
	ctx := context.Background()
	registered, err := f.svc.Register(ctx, enums.UserRoleBuyer, RegisterRequest{Email: "buyer@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resp, err := f.svc.Google(ctx, enums.UserRoleSeller, GoogleRequest{Token: "tok"})

	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.Equal(t, enums.UserRoleBuyer, resp.User.Role)
	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", registered.User.ID).Error)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "sub-2", *stored.GoogleID)
	assert.EqualValues(t, 1, f.count(t, &models.User{}))
}

func TestGoogleErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code pkgerrors.Code
	}{
		{"missing email", google.ErrMissingEmail, pkgerrors.CodeValidation},
		{"not configured", google.ErrNotConfigured, pkgerrors.CodeDependency},
		{"bad token", errors.New("signature mismatch"), pkgerrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, stubVerifier{err: tc.err})
			_, err := f.svc.Google(context.Background(), enums.UserRoleBuyer, GoogleRequest{Token: "tok"})
			assert.Equal(t, tc.code, pkgerrors.CodeOf(err))
		})
	}
}
