package auth

import (
	"github.com/smallbiznis/advisorhub/internal/auth/repository"
	"github.com/smallbiznis/advisorhub/internal/auth/service"
	"github.com/smallbiznis/advisorhub/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(token.NewManager),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
