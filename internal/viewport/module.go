package viewport

import (
	"go.uber.org/fx"
)

// Module provides the viewport loader dependencies
var Module = fx.Options(
	fx.Provide(
		NewLoader,
	),
)
