package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, gen *Generation) error
	List(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, limit int) ([]Generation, error)
	FindModuleUsage(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type) (*ModuleUsage, error)
	ListModuleUsage(ctx context.Context, db *gorm.DB, businessID snowflake.ID) ([]ModuleUsage, error)
	UpdateModuleUsage(ctx context.Context, db *gorm.DB, usage *ModuleUsage) error
	// BumpModuleUsage increments the monthly counter and stamps the
	// last-used time in one statement.
	BumpModuleUsage(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type) error
}
