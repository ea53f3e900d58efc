package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"arena-archive/internal/api"
	"arena-archive/internal/config"
	"arena-archive/internal/constants"
	"arena-archive/internal/domain"
	"arena-archive/internal/fetch"
	"arena-archive/internal/repository"

	"github.com/rs/zerolog"
)

// FighterSync mirrors the fighter collection: it discovers the current
// high-water token id, fetches every id below it, and reconciles the
// fighter, trait and lineage tables.
type FighterSync struct {
	client      *api.Client
	fighterRepo *repository.FighterRepository
	concurrency int
	logger      zerolog.Logger
}

func NewFighterSync(client *api.Client, fighterRepo *repository.FighterRepository, cfg *config.Config, logger zerolog.Logger) *FighterSync {
	return &FighterSync{
		client:      client,
		fighterRepo: fighterRepo,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

type fighterResult struct {
	resp      *api.FighterResponse
	fetchedAt time.Time
}

func (s *FighterSync) Scan(ctx context.Context) error {
	s.logger.Info().Msg("beginning fighter scan")

	highWater, err := s.discoverHighWaterMark(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover high-water mark: %w", err)
	}
	s.logger.Debug().Int64("high_water", highWater).Msg("highest token id")

	var (
		fighters []domain.Fighter
		traits   []domain.FighterTrait
		parents  []domain.FighterParent
	)

	for _, result := range s.scrapeFighters(ctx, highWater) {
		fighter := result.resp
		id := fighter.Attributes.ID

		var mum *int64
		if node := fighter.Attributes.LineageNode; node != nil {
			parents = append(parents, domain.FighterParent{
				FighterID: id,
				ParentID:  node.Parents[0],
			})
			parents = append(parents, domain.FighterParent{
				FighterID: id,
				ParentID:  node.Parents[1],
			})
			m := node.OriginalMum
			mum = &m
		}

		fighters = append(fighters, domain.Fighter{
			ID:           id,
			WisdomPoint:  int(fighter.Statistic.Wisdom.Point),
			StrengthFrom: int(fighter.Statistic.Wisdom.Strength.From),
			StrengthTo:   int(fighter.Statistic.Wisdom.Strength.To),
			AttackFrom:   int(fighter.Statistic.Wisdom.Attack.From),
			AttackTo:     int(fighter.Statistic.Wisdom.Attack.To),
			DefenceFrom:  int(fighter.Statistic.Wisdom.Defence.From),
			DefenceTo:    int(fighter.Statistic.Wisdom.Defence.To),
			OmegaFrom:    int(fighter.Statistic.Wisdom.Omega.From),
			OmegaTo:      int(fighter.Statistic.Wisdom.Omega.To),
			ChampionType: fighter.Attributes.ChampionType,
			Mum:          mum,
			LastUpdated:  result.fetchedAt,
		})

		for _, entry := range fighter.Attributes.Attributes {
			traits = append(traits, domain.FighterTrait{
				FighterID: id,
				TraitType: entry.TraitType,
				Value:     entry.Value,
			})
		}
	}

	if err := s.fighterRepo.UpsertBatch(ctx, fighters); err != nil {
		s.logger.Warn().Err(err).Msg("fighter upsert failed, aborting scan")
		return err
	}
	if err := s.fighterRepo.ReplaceTraits(ctx, traits); err != nil {
		s.logger.Warn().Err(err).Msg("trait reconciliation failed, aborting scan")
		return err
	}
	if err := s.fighterRepo.ReplaceParents(ctx, parents); err != nil {
		s.logger.Warn().Err(err).Msg("lineage reconciliation failed, aborting scan")
		return err
	}

	s.logger.Info().
		Int("fighters", len(fighters)).
		Int("traits", len(traits)).
		Int("parent_edges", len(parents)).
		Msg("fighter scan complete")
	return nil
}

// discoverHighWaterMark walks the NFT index listing from the highest
// locally known id, following the pagination token until the final page,
// whose item count tops up the mark.
func (s *FighterSync) discoverHighWaterMark(ctx context.Context) (int64, error) {
	lastHighest, ok, err := s.fighterRepo.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		lastHighest = constants.FighterIDBaseline
	}

	for {
		page, err := fetch.Do(ctx, s.logger, func(ctx context.Context) (*api.CollectionPage, error) {
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()
			return s.client.GetCollectionPage(apiCtx, lastHighest)
		})
		if err != nil {
			return 0, err
		}

		if page.NextToken == "" {
			return lastHighest + int64(len(page.NFTs)), nil
		}

		next, err := strconv.ParseInt(strings.TrimPrefix(page.NextToken, "0x"), 16, 64)
		if err != nil {
			return 0, fmt.Errorf("bad pagination token %q: %w", page.NextToken, err)
		}
		lastHighest = next
	}
}

// scrapeFighters fetches every id in [0, upTo) with bounded concurrency.
// Ids that fail permanently (token not minted, malformed metadata) are
// simply absent from the result set.
func (s *FighterSync) scrapeFighters(ctx context.Context, upTo int64) []fighterResult {
	ids := make([]int64, upTo)
	for i := range ids {
		ids[i] = int64(i)
	}

	return fetch.Map(ctx, s.concurrency, ids, func(ctx context.Context, id int64) (fighterResult, error) {
		resp, err := fetch.Do(ctx, s.logger, func(ctx context.Context) (*api.FighterResponse, error) {
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			defer cancel()
			return s.client.GetFighter(apiCtx, id)
		})
		if err != nil {
			s.logger.Debug().Int64("id", id).Err(err).Msg("fighter unavailable, skipping")
			return fighterResult{}, err
		}
		s.logger.Debug().Int64("id", id).Msg("completed")
		return fighterResult{resp: resp, fetchedAt: time.Now().UTC()}, nil
	})
}
