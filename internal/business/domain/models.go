// Package domain contains the business entity and its contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Business is a client company on the platform. AdvisorID points at an
// advisor profile, not a user.
type Business struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID   snowflake.ID  `gorm:"not null;index" json:"owner_id"`
	AdvisorID *snowflake.ID `gorm:"index" json:"advisor_id,omitempty"`
	Name      string        `gorm:"type:text;not null" json:"name"`
	Industry  string        `gorm:"type:text" json:"industry,omitempty"`
	Website   string        `gorm:"type:text" json:"website,omitempty"`
	Address   string        `gorm:"type:text" json:"address,omitempty"`
	Phone     string        `gorm:"type:text" json:"phone,omitempty"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Business) TableName() string { return "businesses" }
