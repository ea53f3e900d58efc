package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arena-archive/internal/domain"

	"github.com/rs/zerolog"
)

// MetaRepository owns the scan bookkeeping tables: the failed page ledger
// and the listing checkpoint.
type MetaRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMetaRepository(sqlDB *sql.DB, logger zerolog.Logger) *MetaRepository {
	return &MetaRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// InsertFailedPage records a listing page for retry on the next scan.
// Re-recording an already ledgered page is a no-op.
func (r *MetaRepository) InsertFailedPage(ctx context.Context, pageSize, pageIndex int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO failed_page_ledger (page_size, page_index) VALUES (?, ?)
		 ON CONFLICT (page_size, page_index) DO NOTHING`,
		pageSize, pageIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed page %d/%d: %w", pageSize, pageIndex, err)
	}
	return nil
}

func (r *MetaRepository) DeleteFailedPage(ctx context.Context, pageSize, pageIndex int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM failed_page_ledger WHERE page_size = ? AND page_index = ?`,
		pageSize, pageIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to clear failed page %d/%d: %w", pageSize, pageIndex, err)
	}
	return nil
}

func (r *MetaRepository) ListFailedPages(ctx context.Context) ([]domain.FailedPage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT page_size, page_index FROM failed_page_ledger ORDER BY page_size, page_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.FailedPage
	for rows.Next() {
		var p domain.FailedPage
		if err := rows.Scan(&p.PageSize, &p.PageIndex); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetCheckpoint returns the persisted listing cursor, or nil when no scan
// has completed yet.
func (r *MetaRepository) GetCheckpoint(ctx context.Context) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	err := r.db.QueryRowContext(ctx,
		`SELECT page_size, page_index FROM scan_checkpoint LIMIT 1`,
	).Scan(&cp.PageSize, &cp.PageIndex)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return &cp, nil
}

// ReplaceCheckpoint swaps the single checkpoint row: clear then insert,
// in one transaction.
func (r *MetaRepository) ReplaceCheckpoint(ctx context.Context, cp domain.Checkpoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scan_checkpoint`); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO scan_checkpoint (page_size, page_index) VALUES (?, ?)`,
		cp.PageSize, cp.PageIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	return tx.Commit()
}
