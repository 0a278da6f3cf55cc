package billing

import (
	"github.com/smallbiznis/advisorhub/internal/billing/service"
	"github.com/smallbiznis/advisorhub/internal/billing/stripe"
	"github.com/smallbiznis/advisorhub/internal/config"
	"go.uber.org/fx"
)

func newStripeClient(cfg config.Config) *stripe.Client {
	return stripe.NewClient(cfg.Stripe)
}

var Module = fx.Module("billing.service",
	fx.Provide(newStripeClient),
	fx.Provide(service.New),
)
