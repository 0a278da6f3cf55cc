package generation

import (
	"github.com/smallbiznis/advisorhub/internal/generation/repository"
	"github.com/smallbiznis/advisorhub/internal/generation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("generation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
