package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wfunc/tictactoe-game/internal/errors"
)

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"register", `{"type":"register","playerId":1,"gameId":2}`, false},
		{"move", `{"type":"move","gameId":2,"playerId":1,"position":4}`, false},
		{"move位置0", `{"type":"move","gameId":2,"playerId":1,"position":0}`, false},
		{"chat", `{"type":"chat","gameId":2,"playerId":1,"message":"hi"}`, false},
		{"非法JSON", `{type: register}`, true},
		{"空类型", `{"gameId":2,"playerId":1}`, true},
		{"未知类型", `{"type":"dance","gameId":2,"playerId":1}`, true},
		{"register缺gameId", `{"type":"register","playerId":1}`, true},
		{"move缺position", `{"type":"move","gameId":2,"playerId":1}`, true},
		{"chat缺message", `{"type":"chat","gameId":2,"playerId":1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseClientMessage([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrMessageFormat))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, msg.Type)
		})
	}
}

// TestParseMoveKeepsPositionZero position为0是合法落子，不能和缺失混淆
func TestParseMoveKeepsPositionZero(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"move","gameId":1,"playerId":2,"position":0}`))
	require.NoError(t, err)
	require.NotNil(t, msg.Position)
	assert.Equal(t, 0, *msg.Position)
}

func TestAckWireShape(t *testing.T) {
	data, err := json.Marshal(&Ack{Message: "Registered successfully in game 7"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Registered successfully in game 7"}`, string(data))
}
