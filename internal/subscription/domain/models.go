// Package domain contains persistence models and contracts for business
// subscriptions and their billing invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status represents lifecycle states for a subscription, mirroring the
// payment provider vocabulary.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// Subscription is the one-to-one billing agreement of a business.
type Subscription struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	BusinessID           snowflake.ID `gorm:"not null;uniqueIndex" json:"business_id"`
	Tier                 Tier         `gorm:"type:text;not null" json:"tier"`
	Status               Status       `gorm:"type:text;not null" json:"status"`
	CurrentPeriodEnd     time.Time    `gorm:"not null" json:"current_period_end"`
	CancelAt             *time.Time   `json:"cancel_at,omitempty"`
	StripeCustomerID     *string      `gorm:"type:text;index" json:"-"`
	StripeSubscriptionID *string      `gorm:"type:text;index" json:"-"`
	CreatedAt            time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// BillingInvoice records one paid provider invoice.
type BillingInvoice struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	SubscriptionID  snowflake.ID    `gorm:"not null;index" json:"subscription_id"`
	StripeInvoiceID string          `gorm:"type:text;not null" json:"-"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Status          string          `gorm:"type:text;not null" json:"status"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (BillingInvoice) TableName() string { return "billing_invoices" }

// TrialPeriod is the length of the free trial granted at provisioning.
const TrialPeriod = 14 * 24 * time.Hour
