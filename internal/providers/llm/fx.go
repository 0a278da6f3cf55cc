package llm

import (
	"github.com/smallbiznis/advisorhub/internal/config"
	"go.uber.org/fx"
)

func newCompleter(cfg config.Config) Completer {
	return NewOpenAI(cfg.OpenAI)
}

var Module = fx.Module("providers.llm",
	fx.Provide(newCompleter),
)
