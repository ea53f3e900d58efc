// Package scheduler drives the sync engines: one cycle runs the fighter
// scan then the tournament scan to completion, and shutdown is honored
// only between cycles. A scan is never interrupted mid-flight; every
// write is idempotent, so the next cycle repairs whatever a failed or
// aborted cycle left behind.
package scheduler

import (
	"context"
	"time"

	"arena-archive/internal/constants"
	"arena-archive/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	fighterSync    *service.FighterSync
	tournamentSync *service.TournamentSync
	interval       time.Duration
	logger         zerolog.Logger
	done           chan struct{}
	stopped        chan struct{}
}

func New(fighterSync *service.FighterSync, tournamentSync *service.TournamentSync, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		fighterSync:    fighterSync,
		tournamentSync: tournamentSync,
		interval:       constants.ScanInterval,
		logger:         logger,
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}
}

// Run loops until Stop is called, starting a cycle immediately and then
// once per interval.
func (s *Scheduler) Run() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.runCycle()
		}
	}
}

// Stop requests shutdown and waits for any in-flight cycle to finish.
func (s *Scheduler) Stop() {
	close(s.done)
	<-s.stopped
}

func (s *Scheduler) runCycle() {
	scanID := uuid.New().String()
	logger := s.logger.With().Str("scan_id", scanID).Logger()
	ctx := logger.WithContext(context.Background())

	start := time.Now()
	logger.Info().Msg("scan cycle started")

	if err := s.fighterSync.Scan(ctx); err != nil {
		logger.Error().Err(err).Msg("fighter scan failed")
	}
	if err := s.tournamentSync.Scan(ctx); err != nil {
		logger.Error().Err(err).Msg("tournament scan failed")
	}

	logger.Info().Dur("duration", time.Since(start)).Msg("scan cycle finished")
}
