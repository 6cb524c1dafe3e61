package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
)

func TestStatsRepoIncrementCreatesRow(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice")
	repo := NewStatsRepository(db)
	ctx := context.Background()

	_, err := repo.FindByPlayer(ctx, ids[0])
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownPlayer))

	require.NoError(t, repo.Increment(ctx, ids[0], 1, 0, 0))

	stats, err := repo.FindByPlayer(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Wins)
	assert.Equal(t, uint64(0), stats.Draws)
	assert.Equal(t, uint64(0), stats.Losses)
}

func TestStatsRepoIncrementAccumulates(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice")
	repo := NewStatsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, ids[0], 1, 0, 0))
	require.NoError(t, repo.Increment(ctx, ids[0], 0, 1, 0))
	require.NoError(t, repo.Increment(ctx, ids[0], 1, 0, 1))
	require.NoError(t, repo.Increment(ctx, ids[0], 0, 0, 0), "空增量直接返回")

	stats, err := repo.FindByPlayer(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Wins)
	assert.Equal(t, uint64(1), stats.Draws)
	assert.Equal(t, uint64(1), stats.Losses)
}

func TestStatsRepoEnsureIdempotent(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice")
	repo := NewStatsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Ensure(ctx, ids[0]))
	require.NoError(t, repo.Ensure(ctx, ids[0]))

	stats, err := repo.FindByPlayer(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Wins)
}
