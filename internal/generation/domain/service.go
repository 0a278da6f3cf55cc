package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/advisorhub/internal/modules"
	"gorm.io/datatypes"
)

var (
	ErrNoSubscription     = errors.New("no_active_subscription")
	ErrLimitReached       = errors.New("generation_limit_reached")
	ErrModuleNotEnabled   = errors.New("module_not_enabled")
	ErrInvalidModule      = errors.New("invalid_module_type")
	ErrInvalidRequestType = errors.New("invalid_request_type")
)

// GenerateRequest is the dispatcher input. Context carries the
// template-specific fields; context["type"] selects the template.
type GenerateRequest struct {
	ModuleType modules.Type   `json:"module_type" binding:"required"`
	Prompt     string         `json:"prompt" binding:"required"`
	Context    map[string]any `json:"context"`
}

// GenerateResponse is returned for fresh and cached generations alike.
type GenerateResponse struct {
	ID       snowflake.ID   `json:"id"`
	Content  string         `json:"content"`
	Metadata datatypes.JSON `json:"metadata"`
	Tokens   int            `json:"tokens"`
	Cached   bool           `json:"cached"`
}

type Service interface {
	// Generate runs the full dispatch pipeline: subscription check,
	// monthly quota, module gate, cache lookup, prompt rendering,
	// provider call, persistence and usage accounting.
	Generate(ctx context.Context, businessID, userID snowflake.ID, req GenerateRequest) (GenerateResponse, error)
	History(ctx context.Context, businessID snowflake.ID, moduleType modules.Type, limit int) ([]Generation, error)
	ListModuleUsage(ctx context.Context, businessID snowflake.ID) ([]ModuleUsage, error)
	SetModuleEnabled(ctx context.Context, businessID snowflake.ID, moduleType modules.Type, enabled bool) (*ModuleUsage, error)
}
