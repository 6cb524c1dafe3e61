package game

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/logger"
	"github.com/wfunc/tictactoe-game/internal/models"
	"github.com/wfunc/tictactoe-game/internal/repository"
)

// 并发加入输掉条件更新竞争时的重试次数
const joinRetries = 3

// JoinResult 匹配结果
type JoinResult struct {
	Game    *models.Game
	Created bool // true表示新开了一桌等待对手
}

// Matchmaker 匹配器
// 把玩家放进最早创建的可加入对局；没有可加入对局时新开一桌。
type Matchmaker struct {
	games repository.GameRepository
	log   *zap.Logger
}

// NewMatchmaker 创建匹配器
func NewMatchmaker(games repository.GameRepository) *Matchmaker {
	return &Matchmaker{
		games: games,
		log:   logger.GetModuleLogger("matchmaker"),
	}
}

// JoinOrCreate 让玩家加入一局游戏
// 加入目标是最早创建的可加入对局。自己开的桌不能自己坐进去，此时
// 返回ErrSelfPlay提示玩家已在等待对手。并发加入同一桌时条件更新只让
// 一个玩家成功，输掉的一方重试下一桌。
func (m *Matchmaker) JoinOrCreate(ctx context.Context, playerID uint) (*JoinResult, error) {
	for attempt := 0; attempt < joinRetries; attempt++ {
		open, err := m.games.FindOldestOpen(ctx)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return m.create(ctx, playerID)
			}
			return nil, err
		}

		if open.Player1ID == playerID {
			return nil, apperrors.New(apperrors.ErrSelfPlay, "玩家已有对局在等待对手")
		}

		if err := m.games.BindSecondPlayer(ctx, open.ID, playerID); err != nil {
			if apperrors.Is(err, apperrors.ErrGameClosed) {
				// 输掉了空槽竞争，换下一桌
				m.log.Debug("加入竞争失败，重试",
					zap.Uint("game_id", open.ID),
					zap.Uint("player_id", playerID))
				continue
			}
			return nil, err
		}

		game, err := m.games.FindByID(ctx, open.ID)
		if err != nil {
			return nil, err
		}

		m.log.Info("玩家加入对局",
			zap.Uint("game_id", game.ID),
			zap.Uint("player_id", playerID))
		return &JoinResult{Game: game, Created: false}, nil
	}

	// 连续输掉竞争，直接新开一桌
	return m.create(ctx, playerID)
}

// Find 查询对局
func (m *Matchmaker) Find(ctx context.Context, gameID uint) (*models.Game, error) {
	return m.games.FindByID(ctx, gameID)
}

// create 新开一桌：玩家占据先手槽位，执X，轮到自己
func (m *Matchmaker) create(ctx context.Context, playerID uint) (*JoinResult, error) {
	turn := playerID
	game := &models.Game{
		Player1ID:  playerID,
		Board:      models.EmptyBoard,
		Turn:       &turn,
		Status:     models.StatusOpen,
		Visibility: models.VisibilityOpen,
	}
	if err := m.games.Create(ctx, game); err != nil {
		return nil, err
	}

	m.log.Info("新开对局等待对手",
		zap.Uint("game_id", game.ID),
		zap.Uint("player_id", playerID))
	return &JoinResult{Game: game, Created: true}, nil
}
