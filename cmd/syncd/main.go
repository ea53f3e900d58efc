package main

import (
	"context"
	"database/sql"

	fxmodules "arena-archive/internal/fx"
	"arena-archive/internal/scheduler"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runScheduler),
	).Run()
}

func runScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	db *sql.DB,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().Msg("scheduler starting")
			go sched.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down, waiting for in-flight scan")
			sched.Stop()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
