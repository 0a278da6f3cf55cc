package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/integration/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, integration *domain.Integration) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO integrations (id, business_id, type, credentials, settings, enabled, last_sync_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		integration.ID,
		integration.BusinessID,
		integration.Type,
		integration.Credentials,
		integration.Settings,
		integration.Enabled,
		integration.LastSyncAt,
		integration.CreatedAt,
		integration.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, integration *domain.Integration) error {
	return db.WithContext(ctx).Exec(
		`UPDATE integrations SET credentials = ?, settings = ?, enabled = ?, last_sync_at = ?, updated_at = ? WHERE id = ?`,
		integration.Credentials,
		integration.Settings,
		integration.Enabled,
		integration.LastSyncAt,
		integration.UpdatedAt,
		integration.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM integrations WHERE id = ?`, id).Error
}

func (r *repo) FindByBusinessAndType(ctx context.Context, db *gorm.DB, businessID snowflake.ID, kind domain.Kind) (*domain.Integration, error) {
	var integration domain.Integration
	err := db.WithContext(ctx).Raw(
		`SELECT id, business_id, type, credentials, settings, enabled, last_sync_at, created_at, updated_at
		 FROM integrations WHERE business_id = ? AND type = ?`,
		businessID,
		kind,
	).Scan(&integration).Error
	if err != nil {
		return nil, err
	}
	if integration.ID == 0 {
		return nil, nil
	}
	return &integration, nil
}

func (r *repo) ListByBusiness(ctx context.Context, db *gorm.DB, businessID snowflake.ID) ([]domain.Integration, error) {
	var integrations []domain.Integration
	err := db.WithContext(ctx).
		Model(&domain.Integration{}).
		Where("business_id = ?", businessID).
		Order("type asc").
		Find(&integrations).Error
	if err != nil {
		return nil, err
	}
	return integrations, nil
}

func (r *repo) CountByBusiness(ctx context.Context, db *gorm.DB, businessID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Integration{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}
