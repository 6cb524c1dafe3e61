package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/tictactoe-game/internal/models"
)

func TestMessageRepoHistoryOrder(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice", "bob")
	repo := NewMessageRepository(db)
	ctx := context.Background()

	texts := []string{"hi", "hello", "your move"}
	for i, text := range texts {
		require.NoError(t, repo.Create(ctx, &models.ChatMessage{
			GameID:  1,
			UserID:  ids[i%2],
			Message: text,
		}))
	}
	// 其他对局的消息不掺进来
	require.NoError(t, repo.Create(ctx, &models.ChatMessage{
		GameID:  2,
		UserID:  ids[0],
		Message: "other table",
	}))

	history, err := repo.FindByGame(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, msg := range history {
		assert.Equal(t, texts[i], msg.Message, "按时间升序")
	}
}

func TestMessageRepoPagination(t *testing.T) {
	db := SetupTestDB(t)
	ids := SeedTestPlayers(t, db, "alice")
	repo := NewMessageRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.ChatMessage{
			GameID:  1,
			UserID:  ids[0],
			Message: "msg",
		}))
	}

	pagination := NewPagination(1, 2)
	page, err := repo.FindByGame(ctx, 1, pagination)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, int64(5), pagination.Total)
}
