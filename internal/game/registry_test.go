package game

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn 测试用连接句柄，记录收到的帧
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	failed bool // true时Send直接报错
}

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.failed {
		return assert.AnError
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) lastFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRegistryBindAndBroadcast(t *testing.T) {
	registry := NewRegistry()
	conn1 := &fakeConn{}
	conn2 := &fakeConn{}

	registry.Bind(1, 10, conn1)
	registry.Bind(1, 20, conn2)

	delivered := registry.Broadcast(1, map[string]string{"hello": "world"})
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, conn1.received())
	assert.Equal(t, 1, conn2.received())

	var payload map[string]string
	require.NoError(t, json.Unmarshal(conn1.lastFrame(), &payload))
	assert.Equal(t, "world", payload["hello"])
}

func TestRegistrySupersede(t *testing.T) {
	registry := NewRegistry()
	oldConn := &fakeConn{}
	newConn := &fakeConn{}

	registry.Bind(1, 10, oldConn)
	registry.Bind(1, 10, newConn)

	// 旧句柄被关闭，广播只到新句柄
	assert.True(t, oldConn.isClosed())
	assert.Same(t, newConn, registry.Bound(1, 10))

	registry.Broadcast(1, map[string]string{"seq": "1"})
	assert.Equal(t, 0, oldConn.received())
	assert.Equal(t, 1, newConn.received())
}

func TestRegistryUnbind(t *testing.T) {
	registry := NewRegistry()
	conn := &fakeConn{}

	registry.Bind(1, 10, conn)
	registry.Bind(2, 10, conn)
	require.Equal(t, 1, registry.Count(1))
	require.Equal(t, 1, registry.Count(2))

	registry.Unbind(conn)
	assert.Equal(t, 0, registry.Count(1))
	assert.Equal(t, 0, registry.Count(2))
	assert.Nil(t, registry.Bound(1, 10))
}

// TestRegistryUnbindKeepsSuccessor 断开的旧句柄不能带走取代它的新绑定
func TestRegistryUnbindKeepsSuccessor(t *testing.T) {
	registry := NewRegistry()
	oldConn := &fakeConn{}
	newConn := &fakeConn{}

	registry.Bind(1, 10, oldConn)
	registry.Bind(1, 10, newConn)
	registry.Unbind(oldConn)

	assert.Same(t, newConn, registry.Bound(1, 10))
}

func TestRegistryBroadcastSkipsFailedConn(t *testing.T) {
	registry := NewRegistry()
	good := &fakeConn{}
	bad := &fakeConn{failed: true}

	registry.Bind(1, 10, good)
	registry.Bind(1, 20, bad)

	delivered := registry.Broadcast(1, map[string]string{"seq": "1"})
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, good.received())
}

// TestRegistryConcurrentAccess 并发绑定/广播/解绑不应竞态
func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := &fakeConn{}
			gameID := uint(n % 4)
			playerID := uint(n)
			registry.Bind(gameID, playerID, conn)
			registry.Broadcast(gameID, map[string]int{"n": n})
			registry.Unbind(conn)
		}(i)
	}
	wg.Wait()

	for gameID := uint(0); gameID < 4; gameID++ {
		assert.Equal(t, 0, registry.Count(gameID))
	}
}
