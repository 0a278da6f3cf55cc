// Package domain contains third-party integration records and their
// contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kind identifies a supported external integration.
type Kind string

const (
	KindGmail          Kind = "gmail"
	KindOutlook        Kind = "outlook"
	KindGoogleCalendar Kind = "google_calendar"
	KindQuickBooks     Kind = "quickbooks"
)

// ValidKind reports whether k is a supported integration type.
func ValidKind(k Kind) bool {
	switch k {
	case KindGmail, KindOutlook, KindGoogleCalendar, KindQuickBooks:
		return true
	}
	return false
}

// Integration is one connected external account. Credentials hold the
// AES-GCM sealed token payload and never leave the service unmasked.
type Integration struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	BusinessID  snowflake.ID      `gorm:"not null;uniqueIndex:idx_integration_business_type" json:"business_id"`
	Type        Kind              `gorm:"type:text;not null;uniqueIndex:idx_integration_business_type" json:"type"`
	Credentials string            `gorm:"type:text;not null" json:"-"`
	Settings    datatypes.JSONMap `gorm:"type:json" json:"settings"`
	Enabled     bool              `gorm:"not null" json:"enabled"`
	LastSyncAt  *time.Time        `json:"last_sync_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Integration) TableName() string { return "integrations" }
