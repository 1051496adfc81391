// Package google verifies Google Sign-In ID tokens.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

var (
	ErrNotConfigured = errors.New("google sign-in is not configured")
	ErrMissingEmail  = errors.New("google account has no email")
)

// Identity is the subset of ID token claims used to find or create accounts.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier validates an ID token and returns the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// IDTokenVerifier checks tokens against Google's published keys.
type IDTokenVerifier struct {
	audience string
	validate validateFunc
}

// NewIDTokenVerifier returns a verifier for clientID. An empty client id
// yields a verifier that rejects every token.
func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{audience: strings.TrimSpace(clientID), validate: idtoken.Validate}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if v.audience == "" {
		return Identity{}, ErrNotConfigured
	}
	payload, err := v.validate(ctx, strings.TrimSpace(token), v.audience)
	if err != nil {
		return Identity{}, fmt.Errorf("validate google id token: %w", err)
	}

	identity := Identity{
		Subject: payload.Subject,
		Email:   strings.ToLower(strings.TrimSpace(claimString(payload.Claims, "email"))),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}
	if identity.Email == "" {
		return Identity{}, ErrMissingEmail
	}
	return identity, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
