package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"arena-archive/internal/constants"
	"arena-archive/internal/domain"

	"github.com/rs/zerolog"
)

type FighterRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFighterRepository(sqlDB *sql.DB, logger zerolog.Logger) *FighterRepository {
	return &FighterRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// MaxID returns the highest stored fighter id. ok is false when the table
// is empty.
func (r *FighterRepository) MaxID(ctx context.Context) (int64, bool, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM fighter`).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query max fighter id: %w", err)
	}
	return max.Int64, max.Valid, nil
}

const upsertFighterSQL = `
INSERT INTO fighter (
	id, wisdom_point,
	strength_from, strength_to, attack_from, attack_to,
	defence_from, defence_to, omega_from, omega_to,
	champion_type, mum, last_updated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	wisdom_point = excluded.wisdom_point,
	strength_from = excluded.strength_from,
	strength_to = excluded.strength_to,
	attack_from = excluded.attack_from,
	attack_to = excluded.attack_to,
	defence_from = excluded.defence_from,
	defence_to = excluded.defence_to,
	omega_from = excluded.omega_from,
	omega_to = excluded.omega_to,
	last_updated = excluded.last_updated`

// UpsertBatch merge-upserts fighter rows in chunks. Purely additive: no
// delete pass is needed, and lineage columns are never overwritten.
func (r *FighterRepository) UpsertBatch(ctx context.Context, fighters []domain.Fighter) error {
	for chunk := range chunks(fighters, constants.DBBatchSize) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, f := range chunk {
			_, err := tx.ExecContext(ctx, upsertFighterSQL,
				f.ID, f.WisdomPoint,
				f.StrengthFrom, f.StrengthTo, f.AttackFrom, f.AttackTo,
				f.DefenceFrom, f.DefenceTo, f.OmegaFrom, f.OmegaTo,
				f.ChampionType, f.Mum, f.LastUpdated,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to upsert fighter %d: %w", f.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit fighter chunk: %w", err)
		}
	}

	return nil
}

// ReplaceTraits makes the stored trait set for every fighter touched by a
// chunk exactly match the given rows: within one transaction per chunk,
// delete everything for those fighter ids, then insert the fresh rows.
func (r *FighterRepository) ReplaceTraits(ctx context.Context, traits []domain.FighterTrait) error {
	for chunk := range chunks(traits, constants.DBBatchSize) {
		ids := make([]int64, 0, len(chunk))
		seen := make(map[int64]bool)
		for _, t := range chunk {
			if !seen[t.FighterID] {
				seen[t.FighterID] = true
				ids = append(ids, t.FighterID)
			}
		}

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		query := fmt.Sprintf(`DELETE FROM fighter_trait WHERE fighter_id IN (%s)`, placeholders(len(ids)))
		if _, err := tx.ExecContext(ctx, query, int64Args(ids)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete stale traits: %w", err)
		}

		for _, t := range chunk {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO fighter_trait (fighter_id, trait_type, value) VALUES (?, ?, ?)
				 ON CONFLICT (fighter_id, trait_type) DO UPDATE SET value = excluded.value`,
				t.FighterID, t.TraitType, t.Value,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert trait %d/%s: %w", t.FighterID, t.TraitType, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit trait chunk: %w", err)
		}
	}

	return nil
}

// ReplaceParents reconciles lineage edges with the same per-chunk
// delete-then-insert pattern as ReplaceTraits.
func (r *FighterRepository) ReplaceParents(ctx context.Context, parents []domain.FighterParent) error {
	for chunk := range chunks(parents, constants.DBBatchSize) {
		ids := make([]int64, 0, len(chunk))
		seen := make(map[int64]bool)
		for _, p := range chunk {
			if !seen[p.FighterID] {
				seen[p.FighterID] = true
				ids = append(ids, p.FighterID)
			}
		}

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		query := fmt.Sprintf(`DELETE FROM fighter_parent WHERE fighter_id IN (%s)`, placeholders(len(ids)))
		if _, err := tx.ExecContext(ctx, query, int64Args(ids)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete stale parent edges: %w", err)
		}

		for _, p := range chunk {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO fighter_parent (fighter_id, parent_id) VALUES (?, ?)
				 ON CONFLICT (fighter_id, parent_id) DO NOTHING`,
				p.FighterID, p.ParentID,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert parent edge %d->%d: %w", p.FighterID, p.ParentID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit parent chunk: %w", err)
		}
	}

	return nil
}

func (r *FighterRepository) GetTraits(ctx context.Context, fighterID int64) ([]domain.FighterTrait, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fighter_id, trait_type, value FROM fighter_trait WHERE fighter_id = ? ORDER BY trait_type`,
		fighterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traits []domain.FighterTrait
	for rows.Next() {
		var t domain.FighterTrait
		if err := rows.Scan(&t.FighterID, &t.TraitType, &t.Value); err != nil {
			return nil, err
		}
		traits = append(traits, t)
	}
	return traits, rows.Err()
}

func (r *FighterRepository) GetParents(ctx context.Context, fighterID int64) ([]domain.FighterParent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fighter_id, parent_id FROM fighter_parent WHERE fighter_id = ? ORDER BY parent_id`,
		fighterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parents []domain.FighterParent
	for rows.Next() {
		var p domain.FighterParent
		if err := rows.Scan(&p.FighterID, &p.ParentID); err != nil {
			return nil, err
		}
		parents = append(parents, p)
	}
	return parents, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// chunks yields batch-size slices of items.
func chunks[T any](items []T, size int) func(func([]T) bool) {
	return func(yield func([]T) bool) {
		for i := 0; i < len(items); i += size {
			end := i + size
			if end > len(items) {
				end = len(items)
			}
			if !yield(items[i:end]) {
				return
			}
		}
	}
}
