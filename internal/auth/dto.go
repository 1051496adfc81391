package auth

import (
	"github.com/angelmondragon/bazaar-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is shared by the buyer and seller sign-up routes.
type RegisterRequest struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,max=120"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=128"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
}

// GoogleRequest carries a Google Sign-In ID token.
type GoogleRequest struct {
	Token string `json:"token" validate:"required"`
}

// RefreshRequest pairs the last access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response contains the tokens and user produced by any sign-in flow.
type Response struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
