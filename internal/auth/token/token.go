// Package token signs and verifies the JWTs and opaque tokens used by
// authentication.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v4"
	"github.com/smallbiznis/advisorhub/internal/config"
)

var ErrInvalidToken = errors.New("invalid_token")

// Purposes for single-use email tokens.
const (
	PurposeEmailVerification = "email_verification"
	PurposePasswordReset     = "password_reset"
)

// AccessClaims is the payload of short-lived access tokens.
type AccessClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type emailClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Manager issues and parses tokens. Access and email tokens are signed
// JWTs with separate secrets; refresh tokens are opaque and only
// meaningful against the sessions table.
type Manager struct {
	accessSecret []byte
	emailSecret  []byte
	accessTTL    time.Duration
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		accessSecret: []byte(cfg.JWTAccessSecret),
		emailSecret:  []byte(cfg.JWTTokenSecret),
		accessTTL:    15 * time.Minute,
	}
}

func (m *Manager) GenerateAccess(userID snowflake.ID, role string) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
}

func (m *Manager) ParseAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.accessSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateEmailToken issues a purpose-bound token for verification and
// password reset links.
func (m *Manager) GenerateEmailToken(email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := emailClaims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.emailSecret)
}

// ParseEmailToken verifies the token and that it was minted for the
// given purpose. Verification tokens cannot reset passwords.
func (m *Manager) ParseEmailToken(raw, purpose string) (string, error) {
	claims := &emailClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.emailSecret, nil
	})
	if err != nil || !parsed.Valid || claims.Purpose != purpose {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// NewRefreshToken returns an opaque random token.
func (m *Manager) NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
