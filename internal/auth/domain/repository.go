package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	SetEmailVerified(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
	SetPassword(ctx context.Context, db *gorm.DB, userID snowflake.ID, hashed string) error
	SetLastLogin(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) error
	InsertAdvisorProfile(ctx context.Context, db *gorm.DB, profile *AdvisorProfile) error
	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	// FindSession returns the session for a token if it has not expired.
	FindSession(ctx context.Context, db *gorm.DB, token string, now time.Time) (*Session, error)
	DeleteSessionByToken(ctx context.Context, db *gorm.DB, token string) error
	DeleteSessionsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
}
