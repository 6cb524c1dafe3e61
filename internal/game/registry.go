package game

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/wfunc/tictactoe-game/internal/logger"
)

// Conn 实时连接句柄，由传输层实现
type Conn interface {
	// Send 尽力投递一帧数据，连接不可用时返回错误
	Send(data []byte) error
	// Close 关闭底层连接
	Close() error
}

// Registry 连接注册表
// 维护 对局ID -> 玩家ID -> 连接句柄 的映射，同一(对局,玩家)只保留最新句柄。
// 所有读写都在同一把锁下进行，广播看到的快照不会早于任何已完成的绑定。
type Registry struct {
	mu    sync.RWMutex
	games map[uint]map[uint]Conn
	log   *zap.Logger
}

// NewRegistry 创建连接注册表
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[uint]map[uint]Conn),
		log:   logger.GetModuleLogger("registry"),
	}
}

// Bind 把玩家的连接句柄绑定到对局
// 同一(对局,玩家)重复绑定时，新句柄取代旧句柄，旧句柄被关闭，不再收到任何广播。
func (r *Registry) Bind(gameID, playerID uint, conn Conn) {
	r.mu.Lock()
	players, ok := r.games[gameID]
	if !ok {
		players = make(map[uint]Conn)
		r.games[gameID] = players
	}
	old := players[playerID]
	players[playerID] = conn
	r.mu.Unlock()

	if old != nil && old != conn {
		old.Close()
		r.log.Debug("连接被新句柄取代",
			zap.Uint("game_id", gameID),
			zap.Uint("player_id", playerID))
	}
}

// Unbind 移除指向该句柄的所有绑定
// 只移除仍指向该句柄的条目；已被新句柄取代的绑定不受影响。
func (r *Registry) Unbind(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for gameID, players := range r.games {
		for playerID, bound := range players {
			if bound == conn {
				delete(players, playerID)
				r.log.Debug("连接已解绑",
					zap.Uint("game_id", gameID),
					zap.Uint("player_id", playerID))
			}
		}
		if len(players) == 0 {
			delete(r.games, gameID)
		}
	}
}

// Bound 返回(对局,玩家)当前绑定的句柄，没有时返回nil
func (r *Registry) Bound(gameID, playerID uint) Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players, ok := r.games[gameID]
	if !ok {
		return nil
	}
	return players[playerID]
}

// Count 返回对局当前绑定的连接数
func (r *Registry) Count(gameID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games[gameID])
}

// Broadcast 把消息序列化后尽力投递给对局的所有在线连接
// 单个连接投递失败只记录日志，不影响其他连接。返回成功投递的连接数。
func (r *Registry) Broadcast(gameID uint, payload interface{}) int {
	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error("广播消息序列化失败",
			zap.Uint("game_id", gameID),
			zap.Error(err))
		return 0
	}

	r.mu.RLock()
	players := r.games[gameID]
	conns := make(map[uint]Conn, len(players))
	for playerID, conn := range players {
		conns[playerID] = conn
	}
	r.mu.RUnlock()

	delivered := 0
	for playerID, conn := range conns {
		if err := conn.Send(data); err != nil {
			r.log.Warn("广播投递失败",
				zap.Uint("game_id", gameID),
				zap.Uint("player_id", playerID),
				zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}
