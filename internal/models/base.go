package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 基础模型（自增ID + 时间戳 + 软删除）
type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
