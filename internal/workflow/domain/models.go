// Package domain contains saved module artifacts: campaigns, invoices,
// appointments, tickets, FAQs, checklists, policies and audits.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"gorm.io/datatypes"
)

// Artifact categories per module.
const (
	CategoryAdCopy        = "ad_copy"
	CategorySocialPost    = "social_post"
	CategoryEmailCampaign = "email_campaign"
	CategoryInvoice       = "invoice"
	CategoryAppointment   = "appointment"
	CategoryTicket        = "ticket"
	CategoryFAQ           = "faq"
	CategoryChecklist     = "checklist"
	CategoryPolicy        = "policy"
	CategoryAudit         = "audit"
)

// Artifact is one saved module output. Content is a free-form document
// whose shape depends on the category.
type Artifact struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	BusinessID snowflake.ID      `gorm:"not null;index" json:"business_id"`
	ModuleType modules.Type      `gorm:"type:text;not null;index" json:"module_type"`
	Category   string            `gorm:"type:text;not null;index" json:"category"`
	Name       string            `gorm:"type:text;not null" json:"name"`
	Content    datatypes.JSONMap `gorm:"type:json" json:"content"`
	IsPublic   bool              `gorm:"not null" json:"is_public"`
	CreatedBy  snowflake.ID      `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Artifact) TableName() string { return "artifacts" }
