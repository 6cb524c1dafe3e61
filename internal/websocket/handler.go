package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
	"github.com/wfunc/tictactoe-game/internal/game"
	"github.com/wfunc/tictactoe-game/internal/logger"
)

// Handler WebSocket消息处理器
// 解析客户端帧并分发给对局协调器。广播由协调器通过注册表完成，这里
// 只负责发给当前连接的确认和错误提示。
type Handler struct {
	coordinator *game.Coordinator
	log         *zap.Logger
}

// NewHandler 创建WebSocket消息处理器
func NewHandler(coordinator *game.Coordinator) *Handler {
	return &Handler{
		coordinator: coordinator,
		log:         logger.GetModuleLogger("websocket"),
	}
}

// handleMessage 处理一帧客户端消息
func (h *Handler) handleMessage(c *Client, data []byte) {
	logger.LogWebSocketMessage("recv", "text", string(data))

	msg, err := ParseClientMessage(data)
	if err != nil {
		h.sendAck(c, err.Error())
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case MessageTypeRegister:
		gm, err := h.coordinator.Register(ctx, msg.GameID, msg.PlayerID, c)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.sendAck(c, fmt.Sprintf("Registered successfully in game %d", gm.ID))

	case MessageTypeMove:
		if _, err := h.coordinator.Move(ctx, msg.GameID, msg.PlayerID, *msg.Position); err != nil {
			h.sendError(c, err)
		}
		// 成功的落子通过注册表广播给双方，这里不再单独回包

	case MessageTypeChat:
		result, err := h.coordinator.Chat(ctx, msg.GameID, msg.PlayerID, msg.Message)
		if err != nil {
			h.sendError(c, err)
			return
		}
		if !result.Persisted {
			h.log.Warn("聊天消息已转发但未入库",
				zap.Uint("game_id", msg.GameID),
				zap.Uint("player_id", msg.PlayerID))
		}
	}
}

// disconnect 连接断开时通知协调器清理绑定
func (h *Handler) disconnect(c *Client) {
	h.coordinator.Disconnect(c)
	h.log.Debug("客户端断开",
		zap.String("client_id", c.ID))
}

// sendError 把业务错误转成提示帧发给当前连接
func (h *Handler) sendError(c *Client, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		h.sendAck(c, appErr.Message)
		if !apperrors.IsValidation(err) {
			logger.LogError(err, "WebSocket请求处理失败",
				zap.String("client_id", c.ID))
		}
		return
	}
	h.sendAck(c, "请求处理失败")
	logger.LogError(err, "WebSocket请求处理失败",
		zap.String("client_id", c.ID))
}

// sendAck 发送确认/提示帧
func (h *Handler) sendAck(c *Client, message string) {
	data, err := json.Marshal(&Ack{Message: message})
	if err != nil {
		return
	}
	if err := c.Send(data); err != nil {
		h.log.Warn("确认帧投递失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
	}
}
