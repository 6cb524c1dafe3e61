package models

import (
	"time"
)

// 棋盘常量
const (
	// EmptyBoard 空棋盘（9个空格）
	EmptyBoard = "---------"
	// CellEmpty 空格符号
	CellEmpty = '-'
	// CellX 先手符号（player1）
	CellX = 'X'
	// CellO 后手符号（player2）
	CellO = 'O'
)

// 对局状态
const (
	StatusOpen       = "open"        // 等待第二个玩家
	StatusInProgress = "in_progress" // 对局进行中
	StatusFinished   = "finished"    // 分出胜负
	StatusDraw       = "draw"        // 平局
)

// 对局可见性
const (
	VisibilityOpen   = "open"   // 可被匹配加入
	VisibilityClosed = "closed" // 两个玩家已就位
)

// Game 对局表
// 不变式：visibility=open 当且仅当第二个槽位为空；turn为空当且仅当对局已终结。
type Game struct {
	BaseModel
	Player1ID  uint   `gorm:"not null;index" json:"player1_id"`
	Player2ID  *uint  `gorm:"index" json:"player2_id,omitempty"`
	Board      string `gorm:"size:9;not null;default:'---------'" json:"board"`
	Turn       *uint  `json:"turn,omitempty"`
	WinnerID   *uint  `json:"winner_id,omitempty"`
	Status     string `gorm:"size:20;not null;default:'open';index" json:"status"`
	Visibility string `gorm:"size:20;not null;default:'open';index" json:"visibility"`
}

// TableName 指定Game表名
func (Game) TableName() string {
	return "games"
}

// IsTerminal 检查对局是否已终结
func (g *Game) IsTerminal() bool {
	return g.Status == StatusFinished || g.Status == StatusDraw
}

// HasPlayer 检查玩家是否属于该对局
func (g *Game) HasPlayer(playerID uint) bool {
	if g.Player1ID == playerID {
		return true
	}
	return g.Player2ID != nil && *g.Player2ID == playerID
}

// OpponentOf 返回对手的玩家ID；玩家不属于对局或对手未就位时返回false
func (g *Game) OpponentOf(playerID uint) (uint, bool) {
	if g.Player1ID == playerID {
		if g.Player2ID == nil {
			return 0, false
		}
		return *g.Player2ID, true
	}
	if g.Player2ID != nil && *g.Player2ID == playerID {
		return g.Player1ID, true
	}
	return 0, false
}

// SymbolOf 返回玩家的棋盘符号：player1执X，player2执O
func (g *Game) SymbolOf(playerID uint) byte {
	if g.Player1ID == playerID {
		return CellX
	}
	return CellO
}

// ChatMessage 聊天消息表（追加写，按created_at排序）
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameID    uint      `gorm:"not null;index" json:"game_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定ChatMessage表名
func (ChatMessage) TableName() string {
	return "messages"
}

// PlayerStats 玩家战绩表（关系库侧；链上另有一份独立副本）
type PlayerStats struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	PlayerID  uint      `gorm:"uniqueIndex;not null" json:"player_id"`
	Wins      uint64    `gorm:"default:0" json:"wins"`
	Draws     uint64    `gorm:"default:0" json:"draws"`
	Losses    uint64    `gorm:"default:0" json:"losses"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName 指定PlayerStats表名
func (PlayerStats) TableName() string {
	return "player_stats"
}
