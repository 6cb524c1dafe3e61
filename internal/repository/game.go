package repository

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/models"
	"gorm.io/gorm"
)

// GameRepository 对局仓储接口
type GameRepository interface {
	BaseRepository
	Create(ctx context.Context, game *models.Game) error
	FindByID(ctx context.Context, id uint) (*models.Game, error)
	// FindOldestOpen 查找最早创建的可加入对局；没有时返回ErrNotFound
	FindOldestOpen(ctx context.Context) (*models.Game, error)
	// BindSecondPlayer 把玩家绑进空槽并关闭可见性（条件更新，输掉竞争时返回ErrGameClosed）
	BindSecondPlayer(ctx context.Context, gameID, playerID uint) error
	// MarkInProgress 将对局从open转为in_progress（第二个玩家完成实时注册时调用）
	MarkInProgress(ctx context.Context, gameID uint) error
	// ApplyMove 原子落库一次落子后的棋盘/轮次/状态；对局已终结时返回ErrGameFinished
	ApplyMove(ctx context.Context, gameID uint, board string, turn, winner *uint, status string) error
}

// gameRepo 对局仓储实现
type gameRepo struct {
	*BaseRepo
}

// NewGameRepository 创建对局仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建对局
func (r *gameRepo) Create(ctx context.Context, game *models.Game) error {
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// FindByID 根据ID查找对局
func (r *gameRepo) FindByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrUnknownGame)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &game, nil
}

// FindOldestOpen 查找最早创建的可加入对局
func (r *gameRepo) FindOldestOpen(ctx context.Context) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityOpen).
		Order("created_at ASC").
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &game, nil
}

// BindSecondPlayer 把玩家绑进空槽并关闭可见性
// 条件更新保证并发加入时只有一个玩家成功，且玩家不会占据自己对局的空槽。
func (r *gameRepo) BindSecondPlayer(ctx context.Context, gameID, playerID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ? AND visibility = ? AND player2_id IS NULL AND player1_id <> ?",
			gameID, models.VisibilityOpen, playerID).
		Updates(map[string]interface{}{
			"player2_id": playerID,
			"visibility": models.VisibilityClosed,
		})
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.ErrDatabaseUpdate)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrGameClosed, "对局已被占用或不可加入")
	}
	return nil
}

// MarkInProgress 将对局从open转为in_progress
func (r *gameRepo) MarkInProgress(ctx context.Context, gameID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ? AND status = ?", gameID, models.StatusOpen).
		Update("status", models.StatusInProgress)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.ErrDatabaseUpdate)
	}
	// 已经是in_progress时无事可做，保持幂等
	return nil
}

// ApplyMove 原子落库一次落子后的棋盘/轮次/状态
func (r *gameRepo) ApplyMove(ctx context.Context, gameID uint, board string, turn, winner *uint, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ? AND status IN ?", gameID, []string{models.StatusOpen, models.StatusInProgress}).
		Updates(map[string]interface{}{
			"board":     board,
			"turn":      turn,
			"winner_id": winner,
			"status":    status,
		})
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.ErrDatabaseUpdate)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrGameFinished)
	}
	return nil
}

// WithTx 使用事务
func (r *gameRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
