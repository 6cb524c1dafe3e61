package database

import (
	"fmt"

	"github.com/wfunc/tictactoe-game/internal/logger"
	"github.com/wfunc/tictactoe-game/internal/models"
	"go.uber.org/zap"
)

// migrationModels 需要迁移的模型列表（按外键依赖排序）
var migrationModels = []interface{}{
	&models.User{},
	&models.Game{},
	&models.ChatMessage{},
	&models.PlayerStats{},
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	logger.Info("开始数据库迁移", zap.Int("models", len(migrationModels)))

	if err := DB.AutoMigrate(migrationModels...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info("数据库迁移完成")
	return nil
}
