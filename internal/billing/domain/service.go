// Package domain defines the billing contracts: checkout, portal and
// cancellation flows plus webhook ingestion.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
)

var (
	ErrNoBillingAccount     = errors.New("no_billing_account")
	ErrNoActiveSubscription = errors.New("no_active_stripe_subscription")
)

type CheckoutRequest struct {
	Tier subscriptiondomain.Tier `json:"tier" binding:"required"`
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

type PortalResult struct {
	PortalURL string `json:"portal_url"`
}

type CancelResult struct {
	Message  string    `json:"message"`
	CancelAt time.Time `json:"cancel_at"`
}

// Service drives the payment provider. Webhook handlers that cannot
// correlate an event to a local subscription log and return nil; the
// provider must not retry those deliveries.
type Service interface {
	Checkout(ctx context.Context, businessID snowflake.ID, email string, tier subscriptiondomain.Tier) (CheckoutResult, error)
	Portal(ctx context.Context, businessID snowflake.ID) (PortalResult, error)
	Cancel(ctx context.Context, businessID snowflake.ID) (CancelResult, error)
	// HandleWebhook verifies the signature header against the raw payload
	// before dispatching on the event type.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
