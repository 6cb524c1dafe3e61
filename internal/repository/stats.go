package repository

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/models"
	"gorm.io/gorm"
)

// StatsRepository 玩家战绩仓储接口（关系库侧的战绩副本）
type StatsRepository interface {
	BaseRepository
	// Ensure 确保玩家的战绩行存在（首次结算时自动建行）
	Ensure(ctx context.Context, playerID uint) error
	// Increment 给玩家的三项计数各加上指定增量
	Increment(ctx context.Context, playerID uint, wins, draws, losses uint64) error
	FindByPlayer(ctx context.Context, playerID uint) (*models.PlayerStats, error)
}

// statsRepo 玩家战绩仓储实现
type statsRepo struct {
	*BaseRepo
}

// NewStatsRepository 创建玩家战绩仓储
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Ensure 确保玩家的战绩行存在
func (r *statsRepo) Ensure(ctx context.Context, playerID uint) error {
	stats := models.PlayerStats{PlayerID: playerID}
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		FirstOrCreate(&stats).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// Increment 给玩家的三项计数各加上指定增量
func (r *statsRepo) Increment(ctx context.Context, playerID uint, wins, draws, losses uint64) error {
	if wins == 0 && draws == 0 && losses == 0 {
		return nil
	}

	if err := r.Ensure(ctx, playerID); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if wins > 0 {
		updates["wins"] = gorm.Expr("wins + ?", wins)
	}
	if draws > 0 {
		updates["draws"] = gorm.Expr("draws + ?", draws)
	}
	if losses > 0 {
		updates["losses"] = gorm.Expr("losses + ?", losses)
	}

	err := r.db.WithContext(ctx).
		Model(&models.PlayerStats{}).
		Where("player_id = ?", playerID).
		Updates(updates).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseUpdate)
	}
	return nil
}

// FindByPlayer 查询玩家战绩
func (r *statsRepo) FindByPlayer(ctx context.Context, playerID uint) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrUnknownPlayer)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &stats, nil
}

// WithTx 使用事务
func (r *statsRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &statsRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
