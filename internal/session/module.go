package session

import (
	"github.com/vigilmap/vigil/internal/requester"
	"go.uber.org/fx"
)

// Module provides the session module dependencies
var Module = fx.Options(
	fx.Provide(
		NewManager,
		fx.Annotate(
			func(m *Manager) *Manager { return m },
			fx.As(new(requester.SessionController)),
		),
	),
)
