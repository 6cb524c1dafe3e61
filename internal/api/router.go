package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/tictactoe-game/internal/config"
	"github.com/wfunc/tictactoe-game/internal/game"
	"github.com/wfunc/tictactoe-game/internal/ledger"
	"github.com/wfunc/tictactoe-game/internal/logger"
	"github.com/wfunc/tictactoe-game/internal/middleware"
	"github.com/wfunc/tictactoe-game/internal/repository"
	ws "github.com/wfunc/tictactoe-game/internal/websocket"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	gameHandler    *GameHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, lgr ledger.Ledger, cfg *config.Config) *Router {
	switch cfg.Server.Mode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())

	// 仓储与核心组件
	games := repository.NewGameRepository(db)
	messages := repository.NewMessageRepository(db)
	stats := repository.NewStatsRepository(db)

	registry := game.NewRegistry()
	matchmaker := game.NewMatchmaker(games)
	coordinator := game.NewCoordinator(registry, games, messages, stats, lgr, &cfg.Game)

	// 处理器
	gameHandler := NewGameHandler(matchmaker, messages, stats, lgr)
	wsHandler := NewWebSocketHandler(ws.NewHandler(coordinator), &cfg.WebSocket)

	// 中间件
	authMiddleware := middleware.NewAuthMiddleware(&cfg.Security.JWT)

	router := &Router{
		engine:         engine,
		db:             db,
		gameHandler:    gameHandler,
		wsHandler:      wsHandler,
		authMiddleware: authMiddleware,
		log:            logger.GetModuleLogger("api"),
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.RequireAuth())
	{
		// 对局相关路由
		games := v1.Group("/games")
		{
			games.POST("/join", r.gameHandler.JoinGame)
			games.GET("/:id", r.gameHandler.GetGame)
			games.GET("/:id/messages", r.gameHandler.GetMessages)
		}

		// 玩家相关路由
		players := v1.Group("/players")
		{
			players.GET("/:id/stats", r.gameHandler.GetStats)
			players.GET("/:id/stats/ledger", r.gameHandler.GetLedgerStats)
		}
	}

	// WebSocket路由
	r.engine.GET("/ws", r.authMiddleware.RequireAuth(), r.wsHandler.Serve)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
