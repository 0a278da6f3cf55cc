package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, email, password, first_name, last_name, role, email_verified, last_login_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Password,
		user.FirstName,
		user.LastName,
		user.Role,
		user.EmailVerified,
		user.LastLoginAt,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, password, first_name, last_name, role, email_verified, last_login_at, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, password, first_name, last_name, role, email_verified, last_login_at, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) SetEmailVerified(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET email_verified = ?, updated_at = ? WHERE id = ?`,
		true,
		time.Now().UTC(),
		userID,
	).Error
}

func (r *repo) SetPassword(ctx context.Context, db *gorm.DB, userID snowflake.ID, hashed string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET password = ?, updated_at = ? WHERE id = ?`,
		hashed,
		time.Now().UTC(),
		userID,
	).Error
}

func (r *repo) SetLastLogin(ctx context.Context, db *gorm.DB, userID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at,
		at,
		userID,
	).Error
}

func (r *repo) InsertAdvisorProfile(ctx context.Context, db *gorm.DB, profile *domain.AdvisorProfile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO advisor_profiles (id, user_id, company_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		profile.ID,
		profile.UserID,
		profile.CompanyName,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Error
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.CreatedAt,
	).Error
}

func (r *repo) FindSession(ctx context.Context, db *gorm.DB, token string, now time.Time) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, token, expires_at, created_at
		 FROM sessions WHERE token = ? AND expires_at > ?`,
		token,
		now,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) DeleteSessionByToken(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM sessions WHERE token = ?`, token).Error
}

func (r *repo) DeleteSessionsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM sessions WHERE user_id = ?`, userID).Error
}
