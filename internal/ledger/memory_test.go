package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
)

func TestMemoryLedgerAccumulates(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, l.RecordOutcome(ctx, 1, Delta{Wins: 1}))
	require.NoError(t, l.RecordOutcome(ctx, 1, Delta{Losses: 1}))
	require.NoError(t, l.RecordOutcome(ctx, 1, Delta{Wins: 1, Draws: 1}))

	stats, err := l.ReadStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Wins)
	assert.Equal(t, uint64(1), stats.Draws)
	assert.Equal(t, uint64(1), stats.Losses)
}

func TestMemoryLedgerUnknownPlayer(t *testing.T) {
	l := NewMemoryLedger()

	_, err := l.ReadStats(context.Background(), 42)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownPlayer))
}

func TestMemoryLedgerReturnsCopy(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, l.RecordOutcome(ctx, 1, Delta{Wins: 1}))

	first, err := l.ReadStats(ctx, 1)
	require.NoError(t, err)
	first.Wins = 100

	second, err := l.ReadStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.Wins)
}
