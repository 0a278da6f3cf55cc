// Package domain contains the AI generation audit trail and per-module
// usage records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"gorm.io/datatypes"
)

// Generation is one completed AI generation. Cache hits do not create
// rows here.
type Generation struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	BusinessID snowflake.ID    `gorm:"not null;index" json:"business_id"`
	ModuleType modules.Type    `gorm:"type:text;not null;index" json:"module_type"`
	Prompt     string          `gorm:"type:text;not null" json:"prompt"`
	Response   string          `gorm:"type:text;not null" json:"response"`
	Metadata   datatypes.JSON  `gorm:"type:json" json:"metadata"`
	Tokens     int             `gorm:"not null" json:"tokens"`
	Cost       decimal.Decimal `gorm:"type:decimal(12,6)" json:"cost"`
	CreatedBy  snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time       `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (Generation) TableName() string { return "generations" }

// ModuleUsage tracks whether an AI module is enabled for a business and
// its rolling counters.
type ModuleUsage struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	BusinessID   snowflake.ID `gorm:"not null;uniqueIndex:idx_module_usage_business_module" json:"business_id"`
	ModuleType   modules.Type `gorm:"type:text;not null;uniqueIndex:idx_module_usage_business_module" json:"module_type"`
	Enabled      bool         `gorm:"not null" json:"enabled"`
	MonthlyUsage int64        `gorm:"not null" json:"monthly_usage"`
	LastUsedAt   *time.Time   `json:"last_used_at,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (ModuleUsage) TableName() string { return "module_usages" }
