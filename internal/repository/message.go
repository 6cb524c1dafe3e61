package repository

import (
	"context"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/models"
	"gorm.io/gorm"
)

// MessageRepository 聊天消息仓储接口
type MessageRepository interface {
	BaseRepository
	Create(ctx context.Context, msg *models.ChatMessage) error
	// FindByGame 按时间升序返回对局的消息历史
	FindByGame(ctx context.Context, gameID uint, pagination *Pagination) ([]*models.ChatMessage, error)
}

// messageRepo 聊天消息仓储实现
type messageRepo struct {
	*BaseRepo
}

// NewMessageRepository 创建聊天消息仓储
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 追加一条聊天消息
func (r *messageRepo) Create(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// FindByGame 按时间升序返回对局的消息历史
func (r *messageRepo) FindByGame(ctx context.Context, gameID uint, pagination *Pagination) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	query := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("game_id = ?", gameID)

	if pagination != nil {
		var total int64
		query.Count(&total)
		pagination.Total = total
		query = query.Limit(pagination.PageSize).Offset(pagination.Offset())
	}

	err := query.Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return messages, nil
}

// WithTx 使用事务
func (r *messageRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &messageRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
