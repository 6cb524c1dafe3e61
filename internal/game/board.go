package game

import (
	"github.com/wfunc/tictactoe-game/internal/models"
)

// Result 棋盘判定结果
type Result int

const (
	// ResultNone 对局未分出结果
	ResultNone Result = iota
	// ResultWin 存在获胜连线
	ResultWin
	// ResultDraw 棋盘已满且无连线
	ResultDraw
)

// winningTriples 8条获胜连线（3行、3列、2条对角线）
var winningTriples = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // 行
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // 列
	{0, 4, 8}, {2, 4, 6}, // 对角线
}

// LegalMove 检查落子是否合法：位置在[0,9)内且该格为空
func LegalMove(board string, cell int) bool {
	if cell < 0 || cell >= len(board) {
		return false
	}
	return board[cell] == models.CellEmpty
}

// Apply 在棋盘上落子，返回新棋盘，不修改入参
func Apply(board string, cell int, symbol byte) string {
	cells := []byte(board)
	cells[cell] = symbol
	return string(cells)
}

// Outcome 判定棋盘结果：有连线为胜，无连线且无空格为平，否则继续
func Outcome(board string) Result {
	for _, triple := range winningTriples {
		a, b, c := triple[0], triple[1], triple[2]
		if board[a] != models.CellEmpty && board[a] == board[b] && board[a] == board[c] {
			return ResultWin
		}
	}

	for i := 0; i < len(board); i++ {
		if board[i] == models.CellEmpty {
			return ResultNone
		}
	}
	return ResultDraw
}
