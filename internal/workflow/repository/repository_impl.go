package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, artifact *domain.Artifact) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO artifacts (id, business_id, module_type, category, name, content, is_public, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		artifact.ID,
		artifact.BusinessID,
		artifact.ModuleType,
		artifact.Category,
		artifact.Name,
		artifact.Content,
		artifact.IsPublic,
		artifact.CreatedBy,
		artifact.CreatedAt,
		artifact.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, artifact *domain.Artifact) error {
	return db.WithContext(ctx).Exec(
		`UPDATE artifacts SET name = ?, content = ?, is_public = ?, updated_at = ? WHERE id = ?`,
		artifact.Name,
		artifact.Content,
		artifact.IsPublic,
		artifact.UpdatedAt,
		artifact.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, businessID, id snowflake.ID) (*domain.Artifact, error) {
	var artifact domain.Artifact
	err := db.WithContext(ctx).Raw(
		`SELECT id, business_id, module_type, category, name, content, is_public, created_by, created_at, updated_at
		 FROM artifacts WHERE business_id = ? AND id = ?`,
		businessID,
		id,
	).Scan(&artifact).Error
	if err != nil {
		return nil, err
	}
	if artifact.ID == 0 {
		return nil, nil
	}
	return &artifact, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, category string, limit int) ([]domain.Artifact, error) {
	var artifacts []domain.Artifact
	stmt := db.WithContext(ctx).
		Model(&domain.Artifact{}).
		Where("business_id = ? AND module_type = ?", businessID, moduleType)
	if category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&artifacts).Error
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, category string) (int64, error) {
	var count int64
	stmt := db.WithContext(ctx).
		Model(&domain.Artifact{}).
		Where("business_id = ? AND module_type = ?", businessID, moduleType)
	if category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	err := stmt.Count(&count).Error
	return count, err
}

func (r *repo) CountAll(ctx context.Context, db *gorm.DB, businessID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Artifact{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}

func (r *repo) CountGenerationsSince(ctx context.Context, db *gorm.DB, businessID snowflake.ID, moduleType modules.Type, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM generations WHERE business_id = ? AND module_type = ? AND created_at >= ?`,
		businessID,
		moduleType,
		since,
	).Scan(&count).Error
	return count, err
}
