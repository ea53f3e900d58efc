package fx

import (
	"arena-archive/internal/api"
	"arena-archive/internal/config"
	"arena-archive/internal/database"
	"arena-archive/internal/logger"
	"arena-archive/internal/repository"
	"arena-archive/internal/scheduler"
	"arena-archive/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewFighterRepository),
	fx.Provide(repository.NewTournamentRepository),
	fx.Provide(repository.NewBattleRepository),
	fx.Provide(repository.NewMetaRepository),
	// api client
	fx.Provide(api.NewClient),
	// sync engines
	fx.Provide(service.NewFighterSync),
	fx.Provide(service.NewTournamentSync),
	// scheduler
	fx.Provide(scheduler.New),
)
