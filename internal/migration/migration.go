// Package migration creates the schema on startup. AutoMigrate keeps
// local, self-hosted and test environments usable without a separate
// migration step.
package migration

import (
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	businessdomain "github.com/smallbiznis/advisorhub/internal/business/domain"
	generationdomain "github.com/smallbiznis/advisorhub/internal/generation/domain"
	integrationdomain "github.com/smallbiznis/advisorhub/internal/integration/domain"
	subscriptiondomain "github.com/smallbiznis/advisorhub/internal/subscription/domain"
	workflowdomain "github.com/smallbiznis/advisorhub/internal/workflow/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(db *gorm.DB, log *zap.Logger) error {
	log.Info("running schema migration")
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.AdvisorProfile{},
		&authdomain.Session{},
		&businessdomain.Business{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.BillingInvoice{},
		&generationdomain.Generation{},
		&generationdomain.ModuleUsage{},
		&workflowdomain.Artifact{},
		&integrationdomain.Integration{},
	)
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
