package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, integration *Integration) error
	Update(ctx context.Context, db *gorm.DB, integration *Integration) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByBusinessAndType(ctx context.Context, db *gorm.DB, businessID snowflake.ID, kind Kind) (*Integration, error)
	ListByBusiness(ctx context.Context, db *gorm.DB, businessID snowflake.ID) ([]Integration, error)
	CountByBusiness(ctx context.Context, db *gorm.DB, businessID snowflake.ID) (int64, error)
}
