package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("business_not_found")
	ErrAccessDenied    = errors.New("business_access_denied")
	ErrOwnersOnly      = errors.New("only_owners_create_businesses")
	ErrAlreadyExists   = errors.New("business_already_exists")
	ErrAdvisorNotFound = errors.New("advisor_not_found")
)

type CreateBusinessRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// UpdateBusinessRequest uses pointers so absent fields are left alone.
// AdvisorID accepts the empty string to unassign.
type UpdateBusinessRequest struct {
	Name      *string `json:"name"`
	Industry  *string `json:"industry"`
	Website   *string `json:"website"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	AdvisorID *string `json:"advisor_id"`
}

// OwnerSummary is the subset of the owning user exposed to advisors and
// admins.
type OwnerSummary struct {
	ID        snowflake.ID `json:"id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
}

// BusinessDetail is the single-business view with its subscription and
// module state.
type BusinessDetail struct {
	Business     Business                         `json:"business"`
	Owner        *OwnerSummary                    `json:"owner,omitempty"`
	Subscription *subscriptiondomain.Subscription `json:"subscription,omitempty"`
	Modules      []generationdomain.ModuleUsage   `json:"modules"`
}

type Stats struct {
	TotalGenerations   int64 `json:"total_ai_generations"`
	ActiveIntegrations int64 `json:"active_integrations"`
	ArtifactCount      int64 `json:"artifact_count"`
	CurrentMonthUsage  int64 `json:"current_month_usage"`
}

type Service interface {
	List(ctx context.Context, userID snowflake.ID, role authdomain.Role) ([]Business, error)
	Get(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) (BusinessDetail, error)
	Create(ctx context.Context, userID snowflake.ID, role authdomain.Role, req CreateBusinessRequest) (Business, error)
	Update(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role, req UpdateBusinessRequest) (Business, error)
	// Delete removes the business and every dependent row. Owner or
	// admin only.
	Delete(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) error
	Stats(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) (Stats, error)
	// CheckAccess returns ErrAccessDenied unless the user is an admin,
	// the owner, or the assigned advisor.
	CheckAccess(ctx context.Context, businessID, userID snowflake.ID, role authdomain.Role) error
	// ProvisionOwner creates a business inside the caller's transaction
	// together with its trial subscription and module rows. Used at
	// registration time.
	ProvisionOwner(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID, name string) (Business, error)
}
