package repository

import (
	"context"
	"testing"

	"arena-archive/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttackImmutability(t *testing.T) {
	ctx := context.Background()
	repo := NewBattleRepository(newTestDB(t), zerolog.Nop())

	attack := domain.Attack{
		TournamentID:  202,
		ServiceID:     1,
		FighterID:     17,
		Round:         1,
		Order:         1,
		SpecialAttack: true,
		Damage:        120,
	}
	require.NoError(t, repo.InsertAttacks(ctx, []domain.Attack{attack}))

	// A conflicting re-ingest must never overwrite the recorded hit.
	attack.Damage = 999
	attack.SpecialAttack = false
	require.NoError(t, repo.InsertAttacks(ctx, []domain.Attack{attack}))

	attacks, err := repo.GetAttacks(ctx, 202, 1)
	require.NoError(t, err)
	require.Len(t, attacks, 1)
	assert.Equal(t, int64(120), attacks[0].Damage)
	assert.True(t, attacks[0].SpecialAttack)
}

func TestAttackOrderingWithinTournament(t *testing.T) {
	ctx := context.Background()
	repo := NewBattleRepository(newTestDB(t), zerolog.Nop())

	require.NoError(t, repo.InsertAttacks(ctx, []domain.Attack{
		{TournamentID: 9, ServiceID: 2, FighterID: 4, Round: 2, Order: 1, Damage: 50},
		{TournamentID: 9, ServiceID: 2, FighterID: 4, Round: 1, Order: 2, Damage: 30},
		{TournamentID: 9, ServiceID: 2, FighterID: 5, Round: 1, Order: 1, Damage: 20},
	}))

	attacks, err := repo.GetAttacks(ctx, 9, 2)
	require.NoError(t, err)
	require.Len(t, attacks, 3)
	assert.Equal(t, int64(20), attacks[0].Damage)
	assert.Equal(t, int64(30), attacks[1].Damage)
	assert.Equal(t, int64(50), attacks[2].Damage)
}

func TestStanceMerge(t *testing.T) {
	ctx := context.Background()
	repo := NewBattleRepository(newTestDB(t), zerolog.Nop())

	require.NoError(t, repo.UpsertStances(ctx, []domain.ChampionStance{
		{TournamentID: 202, ServiceID: 1, FighterID: 17, Stance: 4},
	}))

	// Unlike attacks, stance values may change across observations.
	require.NoError(t, repo.UpsertStances(ctx, []domain.ChampionStance{
		{TournamentID: 202, ServiceID: 1, FighterID: 17, Stance: 2},
	}))

	stance, err := repo.GetStance(ctx, 202, 1, 17)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stance)
	assert.Equal(t, 1, count(t, repo.db, "tournament_champion_stance"))
}
