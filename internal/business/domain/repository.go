package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, business *Business) error
	Update(ctx context.Context, db *gorm.DB, business *Business) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Business, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]Business, error)
	ListByAdvisor(ctx context.Context, db *gorm.DB, advisorProfileID snowflake.ID) ([]Business, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]Business, error)
	CountByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (int64, error)
	FindAdvisorProfileByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*authdomain.AdvisorProfile, error)
	FindAdvisorProfileByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*authdomain.AdvisorProfile, error)
	FindOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*OwnerSummary, error)
	// DeleteCascade removes the business and all dependent rows:
	// module usage, generations, artifacts, integrations, billing
	// invoices and the subscription.
	DeleteCascade(ctx context.Context, db *gorm.DB, businessID snowflake.ID) error
	Stats(ctx context.Context, db *gorm.DB, businessID snowflake.ID, monthStart time.Time) (Stats, error)
}
