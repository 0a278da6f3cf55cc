package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	Update(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByBusinessID(ctx context.Context, db *gorm.DB, businessID snowflake.ID) (*Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, db *gorm.DB, stripeSubID string) (*Subscription, error)
	FindByStripeCustomerID(ctx context.Context, db *gorm.DB, stripeCustomerID string) (*Subscription, error)
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *BillingInvoice) error
	ListInvoices(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, limit int) ([]BillingInvoice, error)
	// CountGenerationsSince counts generation audit rows for a business
	// created at or after the given instant. Monthly usage is always
	// derived this way; there is no stored counter reset.
	CountGenerationsSince(ctx context.Context, db *gorm.DB, businessID snowflake.ID, since time.Time) (int64, error)
}
