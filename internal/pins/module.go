package pins

import (
	"go.uber.org/fx"
)

// Module provides the pin domain dependencies
var Module = fx.Options(
	fx.Provide(
		NewStore,
		NewService,
		NewEngine,
	),
)
