package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/internal/auth"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

type stubAuthService struct {
	resp       *auth.Response
	err        error
	role       enums.UserRole
	loggedOut  string
	registered *auth.RegisterRequest
}

func (s *stubAuthService) Register(ctx context.Context, role enums.UserRole, req auth.RegisterRequest) (*auth.Response, error) {
	s.role = role
	s.registered = &req
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Response, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Google(ctx context.Context, role enums.UserRole, req auth.GoogleRequest) (*auth.Response, error) {
	s.role = role
	return s.resp, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.Response, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = accessID
	return s.err
}

func tokenResponse() *auth.Response {
	return &auth.Response{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         &users.UserDTO{ID: uuid.New(), Email: "buyer@example.com", Role: enums.UserRoleBuyer},
	}
}

func TestAuthRegisterSellerSuccess(t *testing.T) {
	svc := &stubAuthService{resp: tokenResponse()}
	handler := AuthRegister(svc, enums.UserRoleSeller, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/register/seller", bytes.NewReader([]byte(`{"name":"Ana","email":"ana@example.com","password":"Secret#123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := resp.Header().Get(tokenHeader); got != "access-token" {
		t.Fatalf("expected token header got %q", got)
	}
	if svc.role != enums.UserRoleSeller {
		t.Fatalf("expected seller role got %s", svc.role)
	}

	var envelope struct {
		Data auth.Response `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", envelope.Data.RefreshToken)
	}
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	svc := &stubAuthService{resp: tokenResponse()}
	handler := AuthRegister(svc, enums.UserRoleBuyer, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`{"email":"ana@example.com","password":"short"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.registered != nil {
		t.Fatal("service should not be called")
	}
}

func TestAuthLoginMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "unknown email", err: pkgerrors.New(pkgerrors.CodeNotFound, "user not found"), want: http.StatusNotFound},
		{name: "google only", err: pkgerrors.New(pkgerrors.CodeValidation, "please login with Google"), want: http.StatusBadRequest},
		{name: "bad password", err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"), want: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthLogin(&stubAuthService{err: tc.err}, nil)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":"a@example.com","password":"whatever"}`)))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestAuthLogoutUsesSessionFromContext(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session got %d", resp.Code)
	}
}

func TestAuthGoogleBuyerRole(t *testing.T) {
	svc := &stubAuthService{resp: tokenResponse()}
	handler := AuthGoogle(svc, enums.UserRoleBuyer, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewReader([]byte(`{"token":"id-token"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role got %s", svc.role)
	}
}

type stubUsersService struct {
	user        *users.UserDTO
	err         error
	buyerInput  *users.BuyerProfileInput
	sellerInput *users.SellerProfileInput
	image       *users.Image
}

func (s *stubUsersService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s *stubUsersService) UpdateBuyerProfile(ctx context.Context, userID uuid.UUID, input users.BuyerProfileInput, image *users.Image) (*users.UserDTO, error) {
	s.buyerInput = &input
	s.image = image
	return s.user, s.err
}

func (s *stubUsersService) UpdateSellerProfile(ctx context.Context, userID uuid.UUID, input users.SellerProfileInput, image *users.Image) (*users.UserDTO, error) {
	s.sellerInput = &input
	s.image = image
	return s.user, s.err
}

func TestAuthMeRequiresUser(t *testing.T) {
	svc := &stubUsersService{user: &users.UserDTO{ID: uuid.New()}}
	handler := AuthMe(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), svc.user.ID.String()))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
