package ledger

import (
	"context"
)

// Stats 玩家在账本上的三项战绩计数
type Stats struct {
	Wins   uint64 `json:"wins"`
	Draws  uint64 `json:"draws"`
	Losses uint64 `json:"losses"`
}

// Delta 一次结算要累加的增量
type Delta struct {
	Wins   uint64
	Draws  uint64
	Losses uint64
}

// IsZero 增量是否为空
func (d Delta) IsZero() bool {
	return d.Wins == 0 && d.Draws == 0 && d.Losses == 0
}

// Ledger 外部追加式战绩账本
// 账本只累加，不回滚。写入失败由调用方记录差异，不影响关系库一侧。
type Ledger interface {
	// RecordOutcome 把一次对局结果累加到玩家的账本计数上
	RecordOutcome(ctx context.Context, playerID uint, delta Delta) error
	// ReadStats 读取玩家在账本上的计数
	ReadStats(ctx context.Context, playerID uint) (*Stats, error)
	// Close 释放底层连接
	Close() error
}
