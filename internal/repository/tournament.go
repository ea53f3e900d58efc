package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arena-archive/internal/constants"
	"arena-archive/internal/domain"

	"github.com/rs/zerolog"
)

type TournamentRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTournamentRepository(sqlDB *sql.DB, logger zerolog.Logger) *TournamentRepository {
	return &TournamentRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *TournamentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournament`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

const upsertTournamentSQL = `
INSERT INTO tournament (
	id, service_id, currency, fee_percentage, buy_in, top_up,
	key, legacy, level, modified, name, restrictions, solo_optionals,
	start_time, status, meta_last_updated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id, service_id) DO UPDATE SET
	currency = excluded.currency,
	fee_percentage = excluded.fee_percentage,
	buy_in = excluded.buy_in,
	top_up = excluded.top_up,
	key = excluded.key,
	legacy = excluded.legacy,
	level = excluded.level,
	modified = excluded.modified,
	name = excluded.name,
	restrictions = excluded.restrictions,
	solo_optionals = excluded.solo_optionals,
	start_time = excluded.start_time,
	status = excluded.status,
	meta_last_updated = excluded.meta_last_updated`

// UpsertBatch merge-upserts tournament rows keyed on (id, service_id) in
// chunks, one transaction per chunk.
func (r *TournamentRepository) UpsertBatch(ctx context.Context, tournaments []domain.Tournament) error {
	for chunk := range chunks(tournaments, constants.DBBatchSize) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, t := range chunk {
			_, err := tx.ExecContext(ctx, upsertTournamentSQL,
				t.ID, t.ServiceID, t.Currency, t.FeePercentage, t.BuyIn, t.TopUp,
				t.Key, t.Legacy, t.Level, t.Modified, t.Name, t.Restrictions, t.SoloOptionals,
				t.StartTime, t.Status, t.MetaUpdatedAt,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to upsert tournament %d/%d: %w", t.ID, t.ServiceID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit tournament chunk: %w", err)
		}
	}

	return nil
}

// ReplaceParticipants reconciles entrant rows: within one transaction per
// chunk, delete every participant of every (tournament, service) pair the
// chunk touches, then insert the fresh rows.
func (r *TournamentRepository) ReplaceParticipants(ctx context.Context, participants []domain.TournamentParticipant) error {
	type pair struct {
		tournamentID int64
		serviceID    int
	}

	for chunk := range chunks(participants, constants.DBBatchSize) {
		pairs := make([]pair, 0, len(chunk))
		seen := make(map[pair]bool)
		for _, p := range chunk {
			key := pair{p.TournamentID, p.ServiceID}
			if !seen[key] {
				seen[key] = true
				pairs = append(pairs, key)
			}
		}

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, key := range pairs {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM tournament_participant WHERE tournament_id = ? AND tournament_service_id = ?`,
				key.tournamentID, key.serviceID,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to delete stale participants: %w", err)
			}
		}

		for _, p := range chunk {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO tournament_participant (tournament_id, tournament_service_id, fighter_id, account)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT (tournament_id, tournament_service_id, fighter_id) DO UPDATE SET account = excluded.account`,
				p.TournamentID, p.ServiceID, p.FighterID, p.Account,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert participant %d/%d/%d: %w", p.TournamentID, p.ServiceID, p.FighterID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit participant chunk: %w", err)
		}
	}

	return nil
}

func (r *TournamentRepository) Get(ctx context.Context, id int64, serviceID int) (*domain.Tournament, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, service_id, currency, fee_percentage, buy_in, top_up,
			key, legacy, level, modified, name, restrictions, solo_optionals,
			start_time, status, meta_last_updated
		 FROM tournament WHERE id = ? AND service_id = ?`,
		id, serviceID,
	)

	var t domain.Tournament
	err := row.Scan(
		&t.ID, &t.ServiceID, &t.Currency, &t.FeePercentage, &t.BuyIn, &t.TopUp,
		&t.Key, &t.Legacy, &t.Level, &t.Modified, &t.Name, &t.Restrictions, &t.SoloOptionals,
		&t.StartTime, &t.Status, &t.MetaUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TournamentRepository) GetParticipants(ctx context.Context, id int64, serviceID int) ([]domain.TournamentParticipant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tournament_id, tournament_service_id, fighter_id, account
		 FROM tournament_participant
		 WHERE tournament_id = ? AND tournament_service_id = ?
		 ORDER BY fighter_id`,
		id, serviceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.TournamentParticipant
	for rows.Next() {
		var p domain.TournamentParticipant
		if err := rows.Scan(&p.TournamentID, &p.ServiceID, &p.FighterID, &p.Account); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
