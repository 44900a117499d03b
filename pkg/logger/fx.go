package logger

import (
	"go.uber.org/fx"
)

// FxOption provides an already built logger as Logger, so the process
// sets up its sinks once.
func FxOption(l *Impl) fx.Option {
	return fx.Provide(
		fx.Annotate(
			func() *Impl { return l },
			fx.As(new(Logger)),
		),
	)
}
