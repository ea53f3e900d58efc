package service

import (
	"context"
	"fmt"
	"time"

	"arena-archive/internal/api"
	"arena-archive/internal/config"
	"arena-archive/internal/constants"
	"arena-archive/internal/domain"
	"arena-archive/internal/fetch"
	"arena-archive/internal/repository"

	"github.com/rs/zerolog"
)

// TournamentSync mirrors the tournament listing: it retries previously
// failed pages, then scans forward from the persisted checkpoint, decoding
// variant-tagged items, reconciling tournament and participant tables and
// pulling each tournament's hit-by-hit battle detail.
type TournamentSync struct {
	client         *api.Client
	tournamentRepo *repository.TournamentRepository
	battleRepo     *repository.BattleRepository
	metaRepo       *repository.MetaRepository
	pageSize       int
	concurrency    int
	logger         zerolog.Logger
}

func NewTournamentSync(
	client *api.Client,
	tournamentRepo *repository.TournamentRepository,
	battleRepo *repository.BattleRepository,
	metaRepo *repository.MetaRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *TournamentSync {
	return &TournamentSync{
		client:         client,
		tournamentRepo: tournamentRepo,
		battleRepo:     battleRepo,
		metaRepo:       metaRepo,
		pageSize:       cfg.PageSize,
		concurrency:    cfg.Concurrency,
		logger:         logger,
	}
}

func (s *TournamentSync) Scan(ctx context.Context) error {
	s.logger.Info().Msg("beginning tournament scan")

	s.retryFailedPages(ctx)

	pageIndex, err := s.startingPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine starting page: %w", err)
	}

	for {
		s.logger.Info().Int("size", s.pageSize).Int("page", pageIndex).Msg("scanning")

		page, err := s.fetchPage(ctx, s.pageSize, pageIndex)
		if err != nil {
			s.logger.Warn().Err(err).Int("size", s.pageSize).Int("page", pageIndex).Msg("page fetch failed")
			if err := s.metaRepo.InsertFailedPage(ctx, s.pageSize, pageIndex); err != nil {
				s.logger.Warn().Err(err).Int("size", s.pageSize).Int("page", pageIndex).
					Msg("could not register failed page. this page will not be tried again!")
			}
			pageIndex++
			continue
		}

		if err := s.processPage(ctx, page, pageIndex); err != nil {
			s.logger.Warn().Err(err).Int("size", s.pageSize).Int("page", pageIndex).Msg("page failed to persist")
			if err := s.metaRepo.InsertFailedPage(ctx, s.pageSize, pageIndex); err != nil {
				s.logger.Warn().Err(err).Int("size", s.pageSize).Int("page", pageIndex).
					Msg("could not register failed page. this page will not be tried again!")
			}
		}

		if !page.HasNextPage {
			break
		}
		pageIndex++
	}

	if err := s.metaRepo.ReplaceCheckpoint(ctx, domain.Checkpoint{
		PageSize:  s.pageSize,
		PageIndex: pageIndex,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("could not persist checkpoint, next scan will start from an estimate")
	}

	s.logger.Info().Int("final_page", pageIndex).Msg("tournament scan complete")
	return nil
}

// retryFailedPages re-processes every ledgered page before forward
// progress. An entry is removed only when fetch, decode and persistence
// all succeed; a page that fails again stays for the next cycle.
func (s *TournamentSync) retryFailedPages(ctx context.Context) {
	pages, err := s.metaRepo.ListFailedPages(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read failed page ledger, skipping retries")
		return
	}
	if len(pages) == 0 {
		return
	}

	s.logger.Info().Int("count", len(pages)).Msg("retrying failed pages")

	for _, p := range pages {
		page, err := s.fetchPage(ctx, p.PageSize, p.PageIndex)
		if err != nil {
			s.logger.Warn().Err(err).Int("size", p.PageSize).Int("page", p.PageIndex).Msg("failed page still failing")
			continue
		}
		if err := s.processPage(ctx, page, p.PageIndex); err != nil {
			s.logger.Warn().Err(err).Int("size", p.PageSize).Int("page", p.PageIndex).Msg("failed page still failing")
			continue
		}
		if err := s.metaRepo.DeleteFailedPage(ctx, p.PageSize, p.PageIndex); err != nil {
			s.logger.Warn().Err(err).Int("size", p.PageSize).Int("page", p.PageIndex).Msg("could not clear ledger entry")
		}
	}
}

// startingPage resumes from the checkpoint when one exists, otherwise
// estimates from the number of already persisted tournaments. The estimate
// may rescan existing tournaments but never skips a page.
func (s *TournamentSync) startingPage(ctx context.Context) (int, error) {
	cp, err := s.metaRepo.GetCheckpoint(ctx)
	if err != nil {
		return 0, err
	}
	if cp != nil {
		// Positions, not indices, survive a page size change.
		return cp.PageSize * cp.PageIndex / s.pageSize, nil
	}

	count, err := s.tournamentRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	return int(count) / s.pageSize, nil
}

func (s *TournamentSync) fetchPage(ctx context.Context, pageSize, pageIndex int) (*api.TournamentPage, error) {
	return fetch.Do(ctx, s.logger, func(ctx context.Context) (*api.TournamentPage, error) {
		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()
		return s.client.GetTournamentPage(apiCtx, pageSize, pageIndex)
	})
}

// processPage decodes a page's items, drops cancelled tournaments and
// reconciles the touched rows. Battle detail failures are logged and
// skipped; only a persistence failure fails the page.
func (s *TournamentSync) processPage(ctx context.Context, page *api.TournamentPage, pageIndex int) error {
	var tournaments []*api.Tournament
	for idx, raw := range page.Items {
		t, err := api.DecodeTournament(raw)
		if err != nil {
			s.logger.Warn().Err(err).
				Int("size", s.pageSize).Int("page", pageIndex).Int("index", idx).
				Msg("could not decode item, skipping. this tournament will not be tried again!")
			continue
		}
		if t.Status == api.StatusCancelled {
			continue
		}
		tournaments = append(tournaments, t)
	}

	if err := s.persistTournaments(ctx, tournaments); err != nil {
		return err
	}

	s.syncBattleDetails(ctx, tournaments)
	return nil
}

func (s *TournamentSync) persistTournaments(ctx context.Context, tournaments []*api.Tournament) error {
	var (
		rows         []domain.Tournament
		participants []domain.TournamentParticipant
	)
	now := time.Now().UTC()

	for _, t := range tournaments {
		var soloOptionals *string
		if t.SoloOptionals != nil {
			v := string(t.SoloOptionals)
			soloOptionals = &v
		}

		rows = append(rows, domain.Tournament{
			ID:            t.TournamentID,
			ServiceID:     t.ServiceID,
			Currency:      t.Configs.Currency,
			FeePercentage: t.Configs.FeePercentage,
			BuyIn:         t.Configs.BuyIn.String(),
			TopUp:         t.Configs.TopUp.String(),
			Key:           t.Key,
			Legacy:        t.Legacy,
			Level:         t.Level.NavKey,
			Modified:      t.Modified,
			Name:          t.Name,
			Restrictions:  string(t.Restrictions),
			SoloOptionals: soloOptionals,
			StartTime:     t.StartTime,
			Status:        string(t.Status),
			MetaUpdatedAt: now,
		})

		if t.ServiceID == api.ServiceOneVOne {
			for _, w := range t.SoloWarriors {
				participants = append(participants, domain.TournamentParticipant{
					TournamentID: t.TournamentID,
					ServiceID:    t.ServiceID,
					FighterID:    w.ID,
				})
			}
		} else {
			for _, w := range t.Warriors {
				account := w.Account
				participants = append(participants, domain.TournamentParticipant{
					TournamentID: t.TournamentID,
					ServiceID:    t.ServiceID,
					FighterID:    w.ID,
					Account:      &account,
				})
			}
		}
	}

	if err := s.tournamentRepo.UpsertBatch(ctx, rows); err != nil {
		return err
	}
	return s.tournamentRepo.ReplaceParticipants(ctx, participants)
}

type battleResult struct {
	tournament *api.Tournament
	detail     *api.BattleDetail
}

// syncBattleDetails concurrently fetches each retained tournament's battle
// document and persists stances and attack log entries. Individual
// failures are logged and skipped; missed details are picked up whenever
// the page is rescanned.
func (s *TournamentSync) syncBattleDetails(ctx context.Context, tournaments []*api.Tournament) {
	results := fetch.Map(ctx, s.concurrency, tournaments, func(ctx context.Context, t *api.Tournament) (battleResult, error) {
		detail, err := fetch.Do(ctx, s.logger, func(ctx context.Context) (*api.BattleDetail, error) {
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()
			return s.client.GetBattleDetail(apiCtx, t.ServiceID, t.TournamentID)
		})
		if err != nil {
			s.logger.Warn().Err(err).
				Int64("tournament", t.TournamentID).Int("service", t.ServiceID).
				Msg("battle detail fetch failed, skipping")
			return battleResult{}, err
		}
		return battleResult{tournament: t, detail: detail}, nil
	})

	for _, r := range results {
		var stances []domain.ChampionStance
		for _, c := range r.detail.Champions {
			stances = append(stances, domain.ChampionStance{
				TournamentID: r.tournament.TournamentID,
				ServiceID:    r.tournament.ServiceID,
				FighterID:    c.TokenID,
				Stance:       c.Stance,
			})
		}

		var attacks []domain.Attack
		for _, b := range r.detail.Battles {
			for _, c := range b.Champions {
				for _, a := range c.Attack {
					attacks = append(attacks, domain.Attack{
						TournamentID:  r.tournament.TournamentID,
						ServiceID:     r.tournament.ServiceID,
						FighterID:     c.ID,
						Round:         b.Round,
						Order:         a.Order,
						SpecialAttack: a.SpecialAttack,
						SpecialDefend: a.SpecialDefend,
						MissedHit:     a.MissedHit,
						Damage:        a.Damage,
					})
				}
			}
		}

		if err := s.battleRepo.UpsertStances(ctx, stances); err != nil {
			s.logger.Warn().Err(err).
				Int64("tournament", r.tournament.TournamentID).Int("service", r.tournament.ServiceID).
				Msg("stance persistence failed, skipping")
			continue
		}
		if err := s.battleRepo.InsertAttacks(ctx, attacks); err != nil {
			s.logger.Warn().Err(err).
				Int64("tournament", r.tournament.TournamentID).Int("service", r.tournament.ServiceID).
				Msg("attack persistence failed, skipping")
		}
	}
}
