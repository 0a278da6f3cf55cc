package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (id, business_id, tier, status, current_period_end, cancel_at, stripe_customer_id, stripe_subscription_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.BusinessID,
		sub.Tier,
		sub.Status,
		sub.CurrentPeriodEnd,
		sub.CancelAt,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET tier = ?, status = ?, current_period_end = ?, cancel_at = ?, stripe_customer_id = ?, stripe_subscription_id = ?, updated_at = ?
		 WHERE id = ?`,
		sub.Tier,
		sub.Status,
		sub.CurrentPeriodEnd,
		sub.CancelAt,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.UpdatedAt,
		sub.ID,
	).Error
}

func (r *repo) FindByBusinessID(ctx context.Context, db *gorm.DB, businessID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, business_id, tier, status, current_period_end, cancel_at, stripe_customer_id, stripe_subscription_id, created_at, updated_at
		 FROM subscriptions WHERE business_id = ?`,
		businessID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) FindByStripeSubscriptionID(ctx context.Context, db *gorm.DB, stripeSubID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, business_id, tier, status, current_period_end, cancel_at, stripe_customer_id, stripe_subscription_id, created_at, updated_at
		 FROM subscriptions WHERE stripe_subscription_id = ?`,
		stripeSubID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) FindByStripeCustomerID(ctx context.Context, db *gorm.DB, stripeCustomerID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, business_id, tier, status, current_period_end, cancel_at, stripe_customer_id, stripe_subscription_id, created_at, updated_at
		 FROM subscriptions WHERE stripe_customer_id = ?`,
		stripeCustomerID,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.BillingInvoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO billing_invoices (id, subscription_id, stripe_invoice_id, amount, status, paid_at, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.SubscriptionID,
		invoice.StripeInvoiceID,
		invoice.Amount,
		invoice.Status,
		invoice.PaidAt,
		invoice.DueDate,
		invoice.CreatedAt,
	).Error
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, limit int) ([]domain.BillingInvoice, error) {
	var invoices []domain.BillingInvoice
	err := db.WithContext(ctx).
		Model(&domain.BillingInvoice{}).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) CountGenerationsSince(ctx context.Context, db *gorm.DB, businessID snowflake.ID, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM generations WHERE business_id = ? AND created_at >= ?`,
		businessID,
		since,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
