package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wfunc/tictactoe-game/internal/config"
	"github.com/wfunc/tictactoe-game/internal/logger"
	ws "github.com/wfunc/tictactoe-game/internal/websocket"
)

// WebSocketHandler WebSocket接入点
type WebSocketHandler struct {
	handler  *ws.Handler
	upgrader gorillaws.Upgrader
	cfg      *config.WebSocketConfig
	log      *zap.Logger
}

// NewWebSocketHandler 创建WebSocket接入点
func NewWebSocketHandler(handler *ws.Handler, cfg *config.WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		handler: handler,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				// 跨域校验交给前置网关
				return true
			},
		},
		cfg: cfg,
		log: logger.GetModuleLogger("websocket"),
	}
}

// Serve 升级HTTP连接并启动读写泵
// GET /ws
func (h *WebSocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket升级失败",
			zap.String("remote", c.ClientIP()),
			zap.Error(err))
		return
	}

	client := ws.NewClient(h.handler, conn, h.cfg.SendBufferSize)
	h.log.Debug("客户端接入",
		zap.String("client_id", client.ID),
		zap.String("remote", c.ClientIP()))

	go client.WritePump()
	go client.ReadPump()
}
