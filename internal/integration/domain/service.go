package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrNotFound         = errors.New("integration_not_found")
	ErrAlreadyConnected = errors.New("integration_already_connected")
	ErrDisabled         = errors.New("integration_disabled")
	ErrUnknownKind      = errors.New("unknown_integration_type")
	ErrLimitReached     = errors.New("integration_limit_reached")
	ErrInvalidState     = errors.New("invalid_oauth_state")
)

type ConnectRequest struct {
	Type        Kind              `json:"type" binding:"required"`
	Credentials map[string]any    `json:"credentials" binding:"required"`
	Settings    datatypes.JSONMap `json:"settings"`
}

// IntegrationView masks credentials; only the connected flag leaks out.
type IntegrationView struct {
	ID         snowflake.ID      `json:"id"`
	Type       Kind              `json:"type"`
	Settings   datatypes.JSONMap `json:"settings"`
	Enabled    bool              `json:"enabled"`
	Connected  bool              `json:"connected"`
	LastSyncAt string            `json:"last_sync_at,omitempty"`
}

// SyncResult is the per-kind summary returned by a sync run.
type SyncResult map[string]any

type Service interface {
	List(ctx context.Context, businessID snowflake.ID) ([]IntegrationView, error)
	// Connect stores encrypted credentials after enforcing the tier's
	// integration allowance.
	Connect(ctx context.Context, businessID snowflake.ID, req ConnectRequest) (IntegrationView, error)
	Disconnect(ctx context.Context, businessID snowflake.ID, kind Kind) error
	Sync(ctx context.Context, businessID snowflake.ID, kind Kind) (SyncResult, error)
	// OAuthURL builds the provider consent URL with an opaque state
	// binding the flow to the business.
	OAuthURL(ctx context.Context, businessID snowflake.ID, kind Kind) (string, error)
	// HandleCallback finishes the OAuth flow: it unpacks the state,
	// exchanges the code and connects the integration.
	HandleCallback(ctx context.Context, code, state string) (IntegrationView, error)
}
