package observability

import "go.uber.org/fx"

// Module provides the HTTP metrics instruments.
var Module = fx.Module("observability",
	fx.Provide(NewHTTPMetrics),
)
