package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound    = errors.New("subscription_not_found")
	ErrInvalidTier = errors.New("invalid_tier")
)

// Usage summarizes the current billing month for a business.
type Usage struct {
	Generations           int64   `json:"ai_generations"`
	GenerationsLimit      int     `json:"ai_generations_limit"`
	GenerationsPercentage float64 `json:"ai_generations_percentage"`
}

// CurrentSubscription is the subscription view returned to clients.
type CurrentSubscription struct {
	Subscription Subscription     `json:"subscription"`
	Usage        Usage            `json:"usage"`
	Limits       Limits           `json:"limits"`
	Invoices     []BillingInvoice `json:"invoices"`
}

type Service interface {
	// GetByBusiness returns the subscription, recent invoices and the
	// computed current-month usage for a business.
	GetByBusiness(ctx context.Context, businessID snowflake.ID) (CurrentSubscription, error)
	// Plans lists the purchasable tiers.
	Plans(ctx context.Context) []Plan
}
