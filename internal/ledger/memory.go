package ledger

import (
	"context"
	"sync"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
)

// MemoryLedger 进程内账本
// 未配置链上账本时的降级实现，也用于测试。数据不落盘，重启即清零。
type MemoryLedger struct {
	mu    sync.RWMutex
	stats map[uint]*Stats
}

// NewMemoryLedger 创建进程内账本
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		stats: make(map[uint]*Stats),
	}
}

// RecordOutcome 累加玩家计数
func (l *MemoryLedger) RecordOutcome(ctx context.Context, playerID uint, delta Delta) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrLedgerWrite)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stats[playerID]
	if !ok {
		s = &Stats{}
		l.stats[playerID] = s
	}
	s.Wins += delta.Wins
	s.Draws += delta.Draws
	s.Losses += delta.Losses
	return nil
}

// ReadStats 读取玩家计数；没写过的玩家返回ErrUnknownPlayer
func (l *MemoryLedger) ReadStats(ctx context.Context, playerID uint) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrLedgerRead)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.stats[playerID]
	if !ok {
		return nil, apperrors.New(apperrors.ErrUnknownPlayer)
	}
	out := *s
	return &out, nil
}

// Close 无资源可释放
func (l *MemoryLedger) Close() error {
	return nil
}
