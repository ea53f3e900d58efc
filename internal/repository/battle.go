package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arena-archive/internal/constants"
	"arena-archive/internal/domain"

	"github.com/rs/zerolog"
)

type BattleRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBattleRepository(sqlDB *sql.DB, logger zerolog.Logger) *BattleRepository {
	return &BattleRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// UpsertStances merge-upserts champion stance rows. Stance values may
// change across observations.
func (r *BattleRepository) UpsertStances(ctx context.Context, stances []domain.ChampionStance) error {
	for chunk := range chunks(stances, constants.DBBatchSize) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, s := range chunk {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO tournament_champion_stance (tournament_id, tournament_service_id, fighter_id, stance)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT (tournament_id, tournament_service_id, fighter_id) DO UPDATE SET stance = excluded.stance`,
				s.TournamentID, s.ServiceID, s.FighterID, s.Stance,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to upsert stance %d/%d/%d: %w", s.TournamentID, s.ServiceID, s.FighterID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit stance chunk: %w", err)
		}
	}

	return nil
}

// InsertAttacks appends hit log entries. An attack already recorded under
// its (tournament, service, round, order) key is left untouched.
func (r *BattleRepository) InsertAttacks(ctx context.Context, attacks []domain.Attack) error {
	for chunk := range chunks(attacks, constants.DBBatchSize) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, a := range chunk {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO tournament_attack (
					tournament_id, tournament_service_id, fighter_id, round, attack_order,
					special_attack, special_defend, missed_hit, damage
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (tournament_id, tournament_service_id, round, attack_order) DO NOTHING`,
				a.TournamentID, a.ServiceID, a.FighterID, a.Round, a.Order,
				a.SpecialAttack, a.SpecialDefend, a.MissedHit, a.Damage,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert attack %d/%d r%d o%d: %w", a.TournamentID, a.ServiceID, a.Round, a.Order, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit attack chunk: %w", err)
		}
	}

	return nil
}

func (r *BattleRepository) GetAttacks(ctx context.Context, tournamentID int64, serviceID int) ([]domain.Attack, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tournament_id, tournament_service_id, fighter_id, round, attack_order,
			special_attack, special_defend, missed_hit, damage
		 FROM tournament_attack
		 WHERE tournament_id = ? AND tournament_service_id = ?
		 ORDER BY round, attack_order`,
		tournamentID, serviceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attacks []domain.Attack
	for rows.Next() {
		var a domain.Attack
		err := rows.Scan(
			&a.TournamentID, &a.ServiceID, &a.FighterID, &a.Round, &a.Order,
			&a.SpecialAttack, &a.SpecialDefend, &a.MissedHit, &a.Damage,
		)
		if err != nil {
			return nil, err
		}
		attacks = append(attacks, a)
	}
	return attacks, rows.Err()
}

func (r *BattleRepository) GetStance(ctx context.Context, tournamentID int64, serviceID int, fighterID int64) (int64, error) {
	var stance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT stance FROM tournament_champion_stance
		 WHERE tournament_id = ? AND tournament_service_id = ? AND fighter_id = ?`,
		tournamentID, serviceID, fighterID,
	).Scan(&stance)
	if err != nil {
		return 0, err
	}
	return stance, nil
}
