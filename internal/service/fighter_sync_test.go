package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"arena-archive/internal/api"
	"arena-archive/internal/config"
	"arena-archive/internal/database"
	"arena-archive/internal/domain"
	"arena-archive/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func newTestConfig(upstreamURL string) *config.Config {
	return &config.Config{
		GameAPIBase:     upstreamURL,
		NFTIndexAPIBase: upstreamURL + "/nft",
		NFTIndexAPIKey:  "test-key",
		ContractAddress: "0x57f698d99d964aef66d974739b98ec694724b1b8",
		PageSize:        2,
		Concurrency:     8,
	}
}

func fighterPayload(id int64, withLineage bool) string {
	lineage := "null"
	if withLineage {
		lineage = `{"parents": [104, 988], "original_mum": 104}`
	}
	return fmt.Sprintf(`{
		"attributes": {
			"id": %d,
			"champion_type": "summoned",
			"attributes": [
				{"trait_type": "Background", "value": "Dusk"},
				{"trait_type": "Generation", "value": 2}
			],
			"lineage_node": %s
		},
		"statistic": {
			"wisdom": {
				"point": 61,
				"strength": {"current_range": 3, "range": [40, 55]},
				"attack": {"current_range": 2, "range": [30, 48]},
				"defence": {"current_range": 1, "range": [22, 37]},
				"omega": {"current_range": 4, "range": [10, 90]}
			},
			"owner_address": "0x3333333333333333333333333333333333333333"
		}
	}`, id, lineage)
}

// fakeNFTUpstream serves the champion and collection endpoints: ids below
// minted exist, everything else is 404, and the collection listing closes
// immediately with `minted - start` items and no continuation token.
func fakeNFTUpstream(t *testing.T, minted int64) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/champions/id/"):
			id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/champions/id/"), 10, 64)
			require.NoError(t, err)
			if id >= minted {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, fighterPayload(id, id >= 3))
		case strings.Contains(r.URL.Path, "/getNFTsForCollection"):
			start, err := strconv.ParseInt(r.URL.Query().Get("startToken"), 10, 64)
			require.NoError(t, err)
			n := minted - start
			if n < 0 {
				n = 0
			}
			nfts := strings.TrimSuffix(strings.Repeat("{},", int(n)), ",")
			fmt.Fprintf(w, `{"nfts": [%s]}`, nfts)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFighterScan(t *testing.T) {
	srv := fakeNFTUpstream(t, 4)
	cfg := newTestConfig(srv.URL)

	db := newTestDB(t)
	repo := repository.NewFighterRepository(db, zerolog.Nop())
	sync := NewFighterSync(api.NewClient(cfg), repo, cfg, zerolog.Nop())

	ctx := context.Background()

	// Seed one fighter so high-water discovery starts from it rather
	// than the empty-table baseline.
	require.NoError(t, repo.UpsertBatch(ctx, []domain.Fighter{{ID: 2, LastUpdated: time.Now().UTC()}}))

	require.NoError(t, sync.Scan(ctx))

	// Start 2 plus the closing page's 2 extra items puts the mark at 4;
	// ids 0..3 all exist upstream.
	var fighters int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fighter`).Scan(&fighters))
	assert.Equal(t, 4, fighters)

	traits, err := repo.GetTraits(ctx, 1)
	require.NoError(t, err)
	require.Len(t, traits, 2)
	assert.Equal(t, "Dusk", traits[0].Value)
	assert.Equal(t, "2", traits[1].Value)

	// Only id 3 carries lineage, and lineage always means two edges.
	parents, err := repo.GetParents(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, parents, 2)

	parents, err = repo.GetParents(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestFighterScanIdempotent(t *testing.T) {
	srv := fakeNFTUpstream(t, 3)
	cfg := newTestConfig(srv.URL)

	db := newTestDB(t)
	repo := repository.NewFighterRepository(db, zerolog.Nop())
	sync := NewFighterSync(api.NewClient(cfg), repo, cfg, zerolog.Nop())

	ctx := context.Background()
	require.NoError(t, repo.UpsertBatch(ctx, []domain.Fighter{{ID: 1, LastUpdated: time.Now().UTC()}}))

	require.NoError(t, sync.Scan(ctx))
	snapshot := tableCounts(t, db)

	require.NoError(t, sync.Scan(ctx))
	assert.Equal(t, snapshot, tableCounts(t, db))
}

func tableCounts(t *testing.T, db *sql.DB) map[string]int {
	t.Helper()

	counts := make(map[string]int)
	for _, table := range []string{"fighter", "fighter_trait", "fighter_parent"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		counts[table] = n
	}
	return counts
}
