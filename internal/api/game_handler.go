package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/game"
	"github.com/wfunc/tictactoe-game/internal/ledger"
	"github.com/wfunc/tictactoe-game/internal/logger"
	"github.com/wfunc/tictactoe-game/internal/repository"
)

// GameHandler 对局相关的HTTP接口
type GameHandler struct {
	matchmaker *game.Matchmaker
	messages   repository.MessageRepository
	stats      repository.StatsRepository
	ledger     ledger.Ledger
	log        *zap.Logger
}

// NewGameHandler 创建对局接口处理器
func NewGameHandler(
	matchmaker *game.Matchmaker,
	messages repository.MessageRepository,
	stats repository.StatsRepository,
	lgr ledger.Ledger,
) *GameHandler {
	return &GameHandler{
		matchmaker: matchmaker,
		messages:   messages,
		stats:      stats,
		ledger:     lgr,
		log:        logger.GetModuleLogger("api"),
	}
}

// joinRequest 加入对局请求体
type joinRequest struct {
	PlayerID uint `json:"player_id" binding:"required"`
}

// JoinGame 加入匹配
// POST /api/v1/games/join
func (h *GameHandler) JoinGame(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrInvalidParam))
		return
	}

	result, err := h.matchmaker.JoinOrCreate(c.Request.Context(), req.PlayerID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Game joined"
	if result.Created {
		message = "Game created"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"game":    result.Game,
	})
}

// GetGame 查询对局
// GET /api/v1/games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	gm, err := h.matchmaker.Find(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": gm})
}

// GetMessages 查询对局聊天历史
// GET /api/v1/games/:id/messages
func (h *GameHandler) GetMessages(c *gin.Context) {
	gameID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	pagination := repository.NewPagination(
		queryInt(c, "page", 1),
		queryInt(c, "page_size", 50),
	)
	messages, err := h.messages.FindByGame(c.Request.Context(), gameID, pagination)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    pagination.Total,
	})
}

// GetStats 查询玩家战绩（关系库）
// GET /api/v1/players/:id/stats
func (h *GameHandler) GetStats(c *gin.Context) {
	playerID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.stats.FindByPlayer(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetLedgerStats 查询玩家战绩（链上账本）
// GET /api/v1/players/:id/stats/ledger
// 两个读口刻意分开：账本可能暂时落后于关系库。
func (h *GameHandler) GetLedgerStats(c *gin.Context) {
	playerID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.ledger.ReadStats(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"stats":     stats,
	})
}

// parseUintParam 解析路径中的数字参数
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || value == 0 {
		return 0, apperrors.Newf(apperrors.ErrInvalidParam, "无效的%s", name)
	}
	return uint(value), nil
}

// queryInt 解析query参数，解析失败用默认值
func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

// respondError 统一错误响应
func respondError(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}
	c.JSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(appErr, c.GetString("request_id")))
}
