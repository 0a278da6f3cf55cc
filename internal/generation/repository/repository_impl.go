package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/generation/domain"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, gen *domain.Generation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO generations (id, business_id, module_type, prompt, response, metadata, tokens, cost, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gen.ID,
		gen.BusinessID,
		gen.ModuleType,
		gen.Prompt,
		gen.Response,
		gen.Metadata,
		gen.Tokens,
		gen.Cost,
		gen.CreatedBy,
		gen.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, limit int) ([]domain.Generation, error) {
	var gens []domain.Generation
	stmt := db.WithContext(ctx).
		Model(&domain.Generation{}).
		Where("business_id = ?", businessID)
	if moduleType != "" {
		stmt = stmt.Where("module_type = ?", moduleType)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&gens).Error
	if err != nil {
		return nil, err
	}
	return gens, nil
}

func (r *repo) FindModuleUsage(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type) (*domain.ModuleUsage, error) {
	var usage domain.ModuleUsage
	err := db.WithContext(ctx).Raw(
		`SELECT id, business_id, module_type, enabled, monthly_usage, last_used_at, created_at, updated_at
		 FROM module_usages WHERE business_id = ? AND module_type = ?`,
		businessID,
		moduleType,
	).Scan(&usage).Error
	if err != nil {
		return nil, err
	}
	if usage.ID == 0 {
		return nil, nil
	}
	return &usage, nil
}

func (r *repo) ListModuleUsage(ctx context.Context, db *gorm.DB, businessID snowflake.ID) ([]domain.ModuleUsage, error) {
	var usages []domain.ModuleUsage
	err := db.WithContext(ctx).
		Model(&domain.ModuleUsage{}).
		Where("business_id = ?", businessID).
		Order("module_type asc").
		Find(&usages).Error
	if err != nil {
		return nil, err
	}
	return usages, nil
}

func (r *repo) UpdateModuleUsage(ctx context.Context, db *gorm.DB, usage *domain.ModuleUsage) error {
	return db.WithContext(ctx).Exec(
		`UPDATE module_usages SET enabled = ?, monthly_usage = ?, last_used_at = ?, updated_at = ? WHERE id = ?`,
		usage.Enabled,
		usage.MonthlyUsage,
		usage.LastUsedAt,
		usage.UpdatedAt,
		usage.ID,
	).Error
}

func (r *repo) BumpModuleUsage(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`UPDATE module_usages SET monthly_usage = monthly_usage + 1, last_used_at = ?, updated_at = ?
		 WHERE business_id = ? AND module_type = ?`,
		now,
		now,
		businessID,
		moduleType,
	).Error
}
