package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"arena-archive/internal/config"
	"arena-archive/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a throwaway database through the production migration
// path, so tests exercise the real schema.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
