package workflow

import (
	"github.com/smallbiznis/advisorhub/internal/workflow/repository"
	"github.com/smallbiznis/advisorhub/internal/workflow/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workflow.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
