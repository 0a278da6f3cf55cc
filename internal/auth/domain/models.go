// Package domain contains the user, advisor profile and session models
// plus the authentication contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role determines what a user can see and do across businesses.
type Role string

const (
	RoleSMBOwner Role = "SMB_OWNER"
	RoleAdvisor  Role = "ADVISOR"
	RoleAdmin    Role = "ADMIN"
)

// ValidRole reports whether r is a role users may register with.
// ADMIN is provisioned out of band.
func ValidRole(r Role) bool {
	return r == RoleSMBOwner || r == RoleAdvisor
}

type User struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Email         string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Password      string       `gorm:"type:text;not null" json:"-"`
	FirstName     string       `gorm:"type:text;not null" json:"first_name"`
	LastName      string       `gorm:"type:text;not null" json:"last_name"`
	Role          Role         `gorm:"type:text;not null" json:"role"`
	EmailVerified bool         `gorm:"not null" json:"email_verified"`
	LastLoginAt   *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// AdvisorProfile holds the advisor-specific attributes of a user.
type AdvisorProfile struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;uniqueIndex" json:"user_id"`
	CompanyName string       `gorm:"type:text" json:"company_name"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (AdvisorProfile) TableName() string { return "advisor_profiles" }

// Session is one opaque refresh token grant. Access tokens are stateless
// JWTs; revocation happens by deleting sessions.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Token     string       `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Token lifetimes.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)
