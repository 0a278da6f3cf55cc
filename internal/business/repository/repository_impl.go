package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/business/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, business *domain.Business) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO businesses (id, owner_id, advisor_id, name, industry, website, address, phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		business.ID,
		business.OwnerID,
		business.AdvisorID,
		business.Name,
		business.Industry,
		business.Website,
		business.Address,
		business.Phone,
		business.CreatedAt,
		business.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, business *domain.Business) error {
	return db.WithContext(ctx).Exec(
		`UPDATE businesses
		 SET advisor_id = ?, name = ?, industry = ?, website = ?, address = ?, phone = ?, updated_at = ?
		 WHERE id = ?`,
		business.AdvisorID,
		business.Name,
		business.Industry,
		business.Website,
		business.Address,
		business.Phone,
		business.UpdatedAt,
		business.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Business, error) {
	var business domain.Business
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, advisor_id, name, industry, website, address, phone, created_at, updated_at
		 FROM businesses WHERE id = ?`,
		id,
	).Scan(&business).Error
	if err != nil {
		return nil, err
	}
	if business.ID == 0 {
		return nil, nil
	}
	return &business, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]domain.Business, error) {
	var businesses []domain.Business
	err := db.WithContext(ctx).
		Model(&domain.Business{}).
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Find(&businesses).Error
	if err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *repo) ListByAdvisor(ctx context.Context, db *gorm.DB, advisorProfileID snowflake.ID) ([]domain.Business, error) {
	var businesses []domain.Business
	err := db.WithContext(ctx).
		Model(&domain.Business{}).
		Where("advisor_id = ?", advisorProfileID).
		Order("created_at desc, id desc").
		Find(&businesses).Error
	if err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]domain.Business, error) {
	var businesses []domain.Business
	err := db.WithContext(ctx).
		Model(&domain.Business{}).
		Order("created_at desc, id desc").
		Find(&businesses).Error
	if err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *repo) CountByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Business{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *repo) FindAdvisorProfileByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*authdomain.AdvisorProfile, error) {
	var profile authdomain.AdvisorProfile
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, company_name, created_at, updated_at
		 FROM advisor_profiles WHERE user_id = ?`,
		userID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) FindAdvisorProfileByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*authdomain.AdvisorProfile, error) {
	var profile authdomain.AdvisorProfile
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, company_name, created_at, updated_at
		 FROM advisor_profiles WHERE id = ?`,
		id,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) FindOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*domain.OwnerSummary, error) {
	var owner domain.OwnerSummary
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, first_name, last_name FROM users WHERE id = ?`,
		ownerID,
	).Scan(&owner).Error
	if err != nil {
		return nil, err
	}
	if owner.ID == 0 {
		return nil, nil
	}
	return &owner, nil
}

func (r *repo) DeleteCascade(ctx context.Context, db *gorm.DB, businessID snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statements := []string{
			`DELETE FROM module_usages WHERE business_id = ?`,
			`DELETE FROM generations WHERE business_id = ?`,
			`DELETE FROM artifacts WHERE business_id = ?`,
			`DELETE FROM integrations WHERE business_id = ?`,
			`DELETE FROM billing_invoices WHERE subscription_id IN (SELECT id FROM subscriptions WHERE business_id = ?)`,
			`DELETE FROM subscriptions WHERE business_id = ?`,
			`DELETE FROM businesses WHERE id = ?`,
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt, businessID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, businessID snowflake.ID, monthStart time.Time) (domain.Stats, error) {
	var stats domain.Stats
	type counter struct {
		query string
		args  []any
		dst   *int64
	}
	counters := []counter{
		{`SELECT COUNT(1) FROM generations WHERE business_id = ?`, []any{businessID}, &stats.TotalGenerations},
		{`SELECT COUNT(1) FROM integrations WHERE business_id = ? AND enabled = ?`, []any{businessID, true}, &stats.ActiveIntegrations},
		{`SELECT COUNT(1) FROM artifacts WHERE business_id = ?`, []any{businessID}, &stats.ArtifactCount},
		{`SELECT COUNT(1) FROM generations WHERE business_id = ? AND created_at >= ?`, []any{businessID, monthStart}, &stats.CurrentMonthUsage},
	}
	for _, c := range counters {
		if err := db.WithContext(ctx).Raw(c.query, c.args...).Scan(c.dst).Error; err != nil {
			return domain.Stats{}, err
		}
	}
	return stats, nil
}
