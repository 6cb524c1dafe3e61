package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/tictactoe-game/internal/models"
)

func TestLegalMove(t *testing.T) {
	board := "X---O----"

	assert.True(t, LegalMove(board, 1))
	assert.True(t, LegalMove(board, 8))
	assert.False(t, LegalMove(board, 0), "已占用的格子")
	assert.False(t, LegalMove(board, 4), "已占用的格子")
	assert.False(t, LegalMove(board, -1), "越界")
	assert.False(t, LegalMove(board, 9), "越界")
}

func TestApplyDoesNotMutate(t *testing.T) {
	board := models.EmptyBoard
	next := Apply(board, 4, models.CellX)

	assert.Equal(t, "----X----", next)
	assert.Equal(t, models.EmptyBoard, board)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Result
	}{
		{"空棋盘", "---------", ResultNone},
		{"进行中", "X-O-X----", ResultNone},
		{"横线获胜", "XXX-OO---", ResultWin},
		{"竖线获胜", "XOX-OX-O-", ResultWin},
		{"主对角线获胜", "X-OOX---X", ResultWin},
		{"副对角线获胜", "OOX-X-X--", ResultWin},
		{"非相邻连线获胜", "X-OXO-X--", ResultWin},
		{"满盘平局", "XOXXOXOXO", ResultDraw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.board))
		})
	}
}

// TestOutcomeRandomGames 随机生成合法对局，校验结果判定与直接扫描一致
func TestOutcomeRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		board := models.EmptyBoard
		symbol := byte(models.CellX)

		for Outcome(board) == ResultNone {
			free := make([]int, 0, 9)
			for cell := 0; cell < 9; cell++ {
				if LegalMove(board, cell) {
					free = append(free, cell)
				}
			}
			require.NotEmpty(t, free, "未终结的棋盘必须还有空格")

			board = Apply(board, free[rng.Intn(len(free))], symbol)
			if symbol == models.CellX {
				symbol = models.CellO
			} else {
				symbol = models.CellX
			}
		}

		switch Outcome(board) {
		case ResultWin:
			assert.True(t, hasWinningTriple(board), "棋盘: %s", board)
		case ResultDraw:
			assert.NotContains(t, board, string(models.CellEmpty), "棋盘: %s", board)
			assert.False(t, hasWinningTriple(board), "棋盘: %s", board)
		}
	}
}

func hasWinningTriple(board string) bool {
	for _, triple := range winningTriples {
		a, b, c := triple[0], triple[1], triple[2]
		if board[a] != models.CellEmpty && board[a] == board[b] && board[a] == board[c] {
			return true
		}
	}
	return false
}
