package websocket

import (
	"encoding/json"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
)

// 客户端消息类型
const (
	MessageTypeRegister = "register"
	MessageTypeMove     = "move"
	MessageTypeChat     = "chat"
)

// ClientMessage 客户端到服务器的统一帧
// register: {type, playerId, gameId}
// move:     {type, gameId, playerId, position}
// chat:     {type, gameId, playerId, message}
type ClientMessage struct {
	Type     string `json:"type"`
	GameID   uint   `json:"gameId"`
	PlayerID uint   `json:"playerId"`
	Position *int   `json:"position,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Ack 服务器的确认与错误提示帧
type Ack struct {
	Message string `json:"message"`
}

// ParseClientMessage 解析并校验客户端帧
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMessageFormat)
	}

	switch msg.Type {
	case MessageTypeRegister:
		if msg.GameID == 0 || msg.PlayerID == 0 {
			return nil, apperrors.New(apperrors.ErrMessageFormat, "register缺少gameId或playerId")
		}
	case MessageTypeMove:
		if msg.GameID == 0 || msg.PlayerID == 0 {
			return nil, apperrors.New(apperrors.ErrMessageFormat, "move缺少gameId或playerId")
		}
		if msg.Position == nil {
			return nil, apperrors.New(apperrors.ErrMessageFormat, "move缺少position")
		}
	case MessageTypeChat:
		if msg.GameID == 0 || msg.PlayerID == 0 {
			return nil, apperrors.New(apperrors.ErrMessageFormat, "chat缺少gameId或playerId")
		}
		if msg.Message == "" {
			return nil, apperrors.New(apperrors.ErrMessageFormat, "chat缺少message")
		}
	case "":
		return nil, apperrors.New(apperrors.ErrMessageFormat, "消息类型不能为空")
	default:
		return nil, apperrors.Newf(apperrors.ErrMessageFormat, "不支持的消息类型: %s", msg.Type)
	}

	return &msg, nil
}
