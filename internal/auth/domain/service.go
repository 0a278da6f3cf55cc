package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrEmailTaken         = errors.New("email_already_registered")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailNotVerified   = errors.New("email_not_verified")
	ErrAlreadyVerified    = errors.New("email_already_verified")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidRole        = errors.New("invalid_role")
)

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Role         Role   `json:"role" binding:"required"`
	BusinessName string `json:"business_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserView struct {
	ID            snowflake.ID `json:"id"`
	Email         string       `json:"email"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Role          Role         `json:"role"`
	EmailVerified bool         `json:"email_verified"`
}

// BusinessSummary is the slice of the provisioned business echoed back
// by register and login.
type BusinessSummary struct {
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name"`
}

type AuthResponse struct {
	User     UserView         `json:"user"`
	Business *BusinessSummary `json:"business,omitempty"`
	Tokens   TokenPair        `json:"tokens"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (AuthResponse, error)
	// Refresh exchanges a live refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword sets a new password and revokes every session of
	// the user.
	ResetPassword(ctx context.Context, token, newPassword string) error
	// GetUser loads a user by id; used by the request authentication
	// middleware to re-validate token subjects.
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
}
