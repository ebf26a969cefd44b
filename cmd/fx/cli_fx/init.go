package cli_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripmate/internal/cli"
	"tripmate/internal/config"
	"tripmate/internal/services"
)

var Module = fx.Options(
	fx.Provide(ProvideREPL),
	fx.Invoke(RunREPL))

func ProvideREPL(
	cfg *config.Config,
	chat services.ChatServiceInterface,
	sessions services.SessionServiceInterface,
	guardrails services.GuardrailServiceInterface,
	logger *zap.Logger,
) *cli.REPL {
	return cli.NewREPL(chat, sessions, guardrails, cli.Options{Raw: cfg.RawOutput}, logger)
}

// RunREPL serves the terminal once the app has started and shuts the app
// down when the user leaves. If the app is stopped first (interrupt), the
// history is flushed.
func RunREPL(lc fx.Lifecycle, shutdowner fx.Shutdowner, repl *cli.REPL, logger *zap.Logger) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				code := 0
				if err := repl.Run(context.Background()); err != nil {
					logger.Error("chat session ended with error", zap.Error(err))
					code = 1
				}
				if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error("shutdown failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-done:
				return nil
			default:
				return repl.Flush(ctx)
			}
		},
	})
}
