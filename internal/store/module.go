package store

import (
	"go.uber.org/fx"
)

// Module provides the token store dependencies
var Module = fx.Options(
	fx.Provide(
		NewTokenStore,
	),
)
