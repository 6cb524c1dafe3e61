package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/tictactoe-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试设置内存数据库
func SetupTestDB(t *testing.T) *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.ChatMessage{},
		&models.PlayerStats{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SeedTestPlayers 创建测试玩家，返回ID
func SeedTestPlayers(t *testing.T, db *gorm.DB, usernames ...string) []uint {
	ids := make([]uint, 0, len(usernames))
	for _, name := range usernames {
		user := models.User{Username: name, Status: "active"}
		require.NoError(t, db.Create(&user).Error)
		ids = append(ids, user.ID)
	}
	return ids
}
