package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/scene"
	"github.com/san-kum/clothsim/internal/sim"
)

func newSim(t *testing.T) *sim.Simulation {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cloth.N = 5
	s, err := scene.NewRegistry().Build(cfg)
	require.NoError(t, err)
	return s
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHubBroadcastsFrames(t *testing.T) {
	s := newSim(t)
	h := NewHub(s.System.N, s.Mesh.Faces, nil)
	s.AddObserver(h)
	conn := dial(t, h)

	var hello Hello
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeHello, hello.Type)
	assert.Equal(t, 5, hello.N)
	assert.Len(t, hello.Faces, len(s.Mesh.Faces))

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Frame())

	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, TypeFrame, f.Type)
	assert.Equal(t, 1, f.Frame)
	assert.InDelta(t, s.Time(), f.Time, 1e-12)
	assert.Len(t, f.Positions, 3*25)
	assert.Len(t, f.Normals, 3*25)
	assert.Equal(t, s.Mesh.Positions, f.Positions)
}

func TestHubReceivesCommands(t *testing.T) {
	s := newSim(t)
	h := NewHub(s.System.N, s.Mesh.Faces, nil)
	conn := dial(t, h)

	var hello Hello
	require.NoError(t, conn.ReadJSON(&hello))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"wave"}`)))
	require.NoError(t, conn.WriteJSON(Command{Type: TypeGrab, X: 320, Y: 300}))

	select {
	case cmd := <-h.Inbox:
		assert.Equal(t, Command{Type: TypeGrab, X: 320, Y: 300}, cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("command not delivered")
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub(5, nil, nil)
	conn := dial(t, h)
	var hello Hello
	require.NoError(t, conn.ReadJSON(&hello))
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.Clients())
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"drag","dx":3,"dy":-4}`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, cmd.DX)

	_, err = DecodeCommand(nil)
	assert.Error(t, err)
	_, err = DecodeCommand([]byte(`{"type":"frame"}`))
	assert.Error(t, err)
	_, err = DecodeCommand([]byte(`{`))
	assert.Error(t, err)
}

func TestRunAppliesCommands(t *testing.T) {
	s := newSim(t)
	h := NewHub(s.System.N, s.Mesh.Faces, nil)

	mid := s.System.Index(2, 2)
	x, y, _, ok := s.Camera.Project(s.System.Particles[mid].Pos)
	require.True(t, ok)
	h.Inbox <- Command{Type: TypeGrab, X: int(x), Y: int(y)}
	h.Inbox <- Command{Type: TypeDrag, DY: -10}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := Run(ctx, s, h, 120)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Greater(t, s.FrameCount(), 0)

	idx, grabbed := s.Grabber.Grabbed()
	assert.True(t, grabbed)
	assert.Equal(t, mid, idx)
}

func TestFrameJSONShape(t *testing.T) {
	b, err := json.Marshal(Frame{Type: TypeFrame, Frame: 2, Time: 0.5})
	require.NoError(t, err)
	for _, key := range []string{`"frame":2`, `"time":0.5`, `"positions"`, `"normals"`} {
		assert.Contains(t, string(b), key)
	}
}
