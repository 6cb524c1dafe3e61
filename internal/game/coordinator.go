package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wfunc/tictactoe-game/internal/config"
	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/ledger"
	"github.com/wfunc/tictactoe-game/internal/logger"
	"github.com/wfunc/tictactoe-game/internal/models"
	"github.com/wfunc/tictactoe-game/internal/repository"
)

// StateUpdate 落子后广播给对局双方的状态消息
type StateUpdate struct {
	GameID uint   `json:"gameId"`
	Board  string `json:"board"`
	Winner *uint  `json:"winner"`
	Draw   bool   `json:"draw"`
	Turn   *uint  `json:"turn"`
}

// ChatRelay 转发给对局双方的聊天消息
type ChatRelay struct {
	Type      string `json:"type"`
	PlayerID  uint   `json:"playerId"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// ChatResult 聊天处理结果
// 转发和持久化是两件事：消息可能已送达对手但没写进库。
type ChatResult struct {
	Delivered int  // 成功投递的连接数
	Persisted bool // 是否已写入消息历史
}

// Coordinator 对局协调器
// 串联匹配后的实时流程：注册连接、校验并执行落子、广播状态、结算战绩、
// 转发聊天。每局一把锁，不同对局互不阻塞。
type Coordinator struct {
	registry *Registry
	games    repository.GameRepository
	messages repository.MessageRepository
	stats    repository.StatsRepository
	ledger   ledger.Ledger

	persistTimeout time.Duration
	chatTimeout    time.Duration

	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	log *zap.Logger
}

// NewCoordinator 创建对局协调器
func NewCoordinator(
	registry *Registry,
	games repository.GameRepository,
	messages repository.MessageRepository,
	stats repository.StatsRepository,
	lgr ledger.Ledger,
	cfg *config.GameConfig,
) *Coordinator {
	persistTimeout := cfg.PersistTimeout
	if persistTimeout <= 0 {
		persistTimeout = 5 * time.Second
	}
	chatTimeout := cfg.ChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 3 * time.Second
	}

	return &Coordinator{
		registry:       registry,
		games:          games,
		messages:       messages,
		stats:          stats,
		ledger:         lgr,
		persistTimeout: persistTimeout,
		chatTimeout:    chatTimeout,
		locks:          make(map[uint]*sync.Mutex),
		log:            logger.GetModuleLogger("coordinator"),
	}
}

// lockFor 返回对局专属的锁
func (c *Coordinator) lockFor(gameID uint) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[gameID] = lock
	}
	return lock
}

// releaseLock 对局终结后回收锁，避免锁表无限增长
func (c *Coordinator) releaseLock(gameID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, gameID)
}

// Register 把玩家的连接绑定到对局
// 同一(对局,玩家)重复注册时新连接取代旧连接。第二个玩家完成注册后
// 对局从open转入in_progress。非参与者在满员的桌前吃到ErrGameClosed，
// 在未满的桌前吃到ErrNotAParticipant（应该走匹配入口）。
func (c *Coordinator) Register(ctx context.Context, gameID, playerID uint, conn Conn) (*models.Game, error) {
	lock := c.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.IsTerminal() {
		return nil, apperrors.New(apperrors.ErrGameClosed, "对局已结束")
	}

	if !game.HasPlayer(playerID) {
		if game.Visibility == models.VisibilityClosed {
			return nil, apperrors.New(apperrors.ErrGameClosed, "对局人数已满")
		}
		return nil, apperrors.New(apperrors.ErrNotAParticipant)
	}

	if game.Player2ID != nil && *game.Player2ID == game.Player1ID {
		return nil, apperrors.New(apperrors.ErrSelfPlay)
	}

	c.registry.Bind(gameID, playerID, conn)

	if game.Status == models.StatusOpen &&
		game.Player2ID != nil && *game.Player2ID == playerID {
		if err := c.games.MarkInProgress(ctx, gameID); err != nil {
			return nil, err
		}
		game.Status = models.StatusInProgress
	}

	logger.LogGameEvent("register", gameID, playerID, map[string]interface{}{
		"status": game.Status,
	})
	return game, nil
}

// Move 处理一次落子
// 校验轮次与合法性，先把新状态落库，成功后广播给双方；终结性落子在
// 广播后触发战绩结算。落库超时或失败则不广播，内存中不留任何痕迹。
func (c *Coordinator) Move(ctx context.Context, gameID, playerID uint, cell int) (*StateUpdate, error) {
	lock := c.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.IsTerminal() {
		return nil, apperrors.New(apperrors.ErrGameFinished)
	}
	if !game.HasPlayer(playerID) {
		return nil, apperrors.New(apperrors.ErrNotAParticipant)
	}
	if game.Status == models.StatusOpen {
		return nil, apperrors.New(apperrors.ErrGameNotStarted, "等待对手加入")
	}
	if game.Turn == nil || *game.Turn != playerID {
		return nil, apperrors.New(apperrors.ErrNotYourTurn)
	}
	if !LegalMove(game.Board, cell) {
		return nil, apperrors.Newf(apperrors.ErrIllegalMove, "位置%d不可用", cell)
	}

	board := Apply(game.Board, cell, game.SymbolOf(playerID))

	var (
		status = models.StatusInProgress
		turn   *uint
		winner *uint
	)
	switch Outcome(board) {
	case ResultWin:
		status = models.StatusFinished
		winner = &playerID
	case ResultDraw:
		status = models.StatusDraw
	default:
		opponent, ok := game.OpponentOf(playerID)
		if !ok {
			return nil, apperrors.New(apperrors.ErrGameNotStarted, "等待对手加入")
		}
		turn = &opponent
	}

	persistCtx, cancel := context.WithTimeout(ctx, c.persistTimeout)
	defer cancel()
	if err := c.games.ApplyMove(persistCtx, gameID, board, turn, winner, status); err != nil {
		logger.LogError(err, "落子持久化失败",
			zap.Uint("game_id", gameID),
			zap.Uint("player_id", playerID),
			zap.Int("cell", cell))
		return nil, err
	}

	update := &StateUpdate{
		GameID: gameID,
		Board:  board,
		Winner: winner,
		Draw:   status == models.StatusDraw,
		Turn:   turn,
	}
	c.registry.Broadcast(gameID, update)

	logger.LogGameEvent("move", gameID, playerID, map[string]interface{}{
		"cell":   cell,
		"board":  board,
		"status": status,
	})

	if status == models.StatusFinished || status == models.StatusDraw {
		c.settle(ctx, game, winner)
		c.releaseLock(gameID)
	}
	return update, nil
}

// settle 终局结算
// 只会在状态成功从进行中转为终结的那次落子里执行一次。两个存储独立
// 推进：关系库失败不回滚账本，账本失败不回滚关系库，失败只记日志，
// 留给对账流程处理。
func (c *Coordinator) settle(ctx context.Context, game *models.Game, winner *uint) {
	if game.Player2ID == nil {
		return
	}
	player1, player2 := game.Player1ID, *game.Player2ID

	deltas := map[uint]ledger.Delta{}
	if winner == nil {
		deltas[player1] = ledger.Delta{Draws: 1}
		deltas[player2] = ledger.Delta{Draws: 1}
	} else {
		loser := player1
		if *winner == player1 {
			loser = player2
		}
		deltas[*winner] = ledger.Delta{Wins: 1}
		deltas[loser] = ledger.Delta{Losses: 1}
	}

	for playerID, delta := range deltas {
		dbCtx, cancel := context.WithTimeout(ctx, c.persistTimeout)
		err := c.stats.Increment(dbCtx, playerID, delta.Wins, delta.Draws, delta.Losses)
		cancel()
		if err != nil {
			logger.LogError(err, "战绩写库失败",
				zap.Uint("game_id", game.ID),
				zap.Uint("player_id", playerID))
		}

		if err := c.ledger.RecordOutcome(ctx, playerID, delta); err != nil {
			divergence := apperrors.Wrap(err, apperrors.ErrLedgerDivergence)
			logger.LogError(divergence, "链上战绩落后于数据库",
				zap.Uint("game_id", game.ID),
				zap.Uint("player_id", playerID))
		}
	}

	logger.LogGameEvent("settle", game.ID, 0, map[string]interface{}{
		"winner": winner,
	})
}

// Chat 转发一条聊天消息
// 先尝试写进消息历史，无论写库成败都继续转发给双方。写库失败只记
// 日志，结果里的Persisted如实反映。
func (c *Coordinator) Chat(ctx context.Context, gameID, playerID uint, text string) (*ChatResult, error) {
	if text == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "消息内容为空")
	}

	game, err := c.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.HasPlayer(playerID) {
		return nil, apperrors.New(apperrors.ErrNotAParticipant)
	}

	msg := &models.ChatMessage{
		GameID:  gameID,
		UserID:  playerID,
		Message: text,
	}

	persisted := true
	persistCtx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	if err := c.messages.Create(persistCtx, msg); err != nil {
		persisted = false
		logger.LogError(err, "聊天消息写库失败",
			zap.Uint("game_id", gameID),
			zap.Uint("player_id", playerID))
	}
	cancel()

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	relay := &ChatRelay{
		Type:      "chat",
		PlayerID:  playerID,
		Message:   text,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
	delivered := c.registry.Broadcast(gameID, relay)

	return &ChatResult{Delivered: delivered, Persisted: persisted}, nil
}

// Disconnect 连接断开时清理其所有绑定
func (c *Coordinator) Disconnect(conn Conn) {
	c.registry.Unbind(conn)
}
