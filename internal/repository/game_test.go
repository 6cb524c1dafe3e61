package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/models"
)

func newOpenGame(t *testing.T, repo GameRepository, player1 uint) *models.Game {
	turn := player1
	game := &models.Game{
		Player1ID:  player1,
		Board:      models.EmptyBoard,
		Turn:       &turn,
		Status:     models.StatusOpen,
		Visibility: models.VisibilityOpen,
	}
	require.NoError(t, repo.Create(context.Background(), game))
	return game
}

func TestGameRepoFindByID(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice")
	repo := NewGameRepository(db)

	game := newOpenGame(t, repo, ids[0])

	found, err := repo.FindByID(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[0], found.Player1ID)
	assert.Equal(t, models.EmptyBoard, found.Board)

	_, err = repo.FindByID(context.Background(), 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownGame))
}

func TestGameRepoFindOldestOpen(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice", "bob")
	repo := NewGameRepository(db)
	ctx := context.Background()

	_, err := repo.FindOldestOpen(ctx)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	first := newOpenGame(t, repo, ids[0])
	newOpenGame(t, repo, ids[1])

	oldest, err := repo.FindOldestOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, oldest.ID, "按创建时间取最早的一桌")
}

func TestGameRepoBindSecondPlayer(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice", "bob", "carol")
	repo := NewGameRepository(db)
	ctx := context.Background()

	game := newOpenGame(t, repo, ids[0])

	// 自己不能占自己的空槽
	err := repo.BindSecondPlayer(ctx, game.ID, ids[0])
	assert.True(t, apperrors.Is(err, apperrors.ErrGameClosed))

	require.NoError(t, repo.BindSecondPlayer(ctx, game.ID, ids[1]))

	bound, err := repo.FindByID(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, bound.Player2ID)
	assert.Equal(t, ids[1], *bound.Player2ID)
	assert.Equal(t, models.VisibilityClosed, bound.Visibility)

	// 槽位只有一个，后来者吃闭门羹
	err = repo.BindSecondPlayer(ctx, game.ID, ids[2])
	assert.True(t, apperrors.Is(err, apperrors.ErrGameClosed))
}

func TestGameRepoMarkInProgressIdempotent(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice", "bob")
	repo := NewGameRepository(db)
	ctx := context.Background()

	game := newOpenGame(t, repo, ids[0])
	require.NoError(t, repo.BindSecondPlayer(ctx, game.ID, ids[1]))

	require.NoError(t, repo.MarkInProgress(ctx, game.ID))
	require.NoError(t, repo.MarkInProgress(ctx, game.ID), "重复调用不报错")

	stored, err := repo.FindByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)
}

func TestGameRepoApplyMoveTerminalGuard(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice", "bob")
	repo := NewGameRepository(db)
	ctx := context.Background()

	game := newOpenGame(t, repo, ids[0])
	require.NoError(t, repo.BindSecondPlayer(ctx, game.ID, ids[1]))
	require.NoError(t, repo.MarkInProgress(ctx, game.ID))

	// 终结性更新只成功一次
	winner := ids[0]
	require.NoError(t, repo.ApplyMove(ctx, game.ID, "XXX-OO---", nil, &winner, models.StatusFinished))

	err := repo.ApplyMove(ctx, game.ID, "XXXOOO---", nil, nil, models.StatusDraw)
	assert.True(t, apperrors.Is(err, apperrors.ErrGameFinished))

	stored, err := repo.FindByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, stored.Status)
	assert.Equal(t, "XXX-OO---", stored.Board)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, ids[0], *stored.WinnerID)
	assert.Nil(t, stored.Turn)
}
