package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, artifact *Artifact) error
	Update(ctx context.Context, db *gorm.DB, artifact *Artifact) error
	FindByID(ctx context.Context, db *gorm.DB, businessID, id snowflake.ID) (*Artifact, error)
	// List filters by module and optionally by category; empty category
	// matches everything.
	List(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, category string, limit int) ([]Artifact, error)
	Count(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, category string) (int64, error)
	CountAll(ctx context.Context, db *gorm.DB, businessID snowflake.ID) (int64, error)
	CountGenerationsSince(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, since time.Time) (int64, error)
}
