package mailer

import (
	"github.com/smallbiznis/advisorhub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newProvider(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMTP.Host == "" {
		log.Warn("smtp not configured, mail delivery disabled")
		return NoOpProvider{}
	}
	return NewSMTP(cfg.SMTP)
}

func newMailer(provider Provider, cfg config.Config, log *zap.Logger) *Mailer {
	return New(provider, log, cfg.FrontendURL)
}

// Module wires the mail provider and message sender.
var Module = fx.Module("mailer",
	fx.Provide(newProvider),
	fx.Provide(newMailer),
)
