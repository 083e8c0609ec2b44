package ipc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/registry"
	"github.com/1broseidon/workbench/internal/state"
	"github.com/1broseidon/workbench/internal/viewport"
	"github.com/1broseidon/workbench/internal/wm"
)

func testCatalog(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	for _, p := range []registry.Program{
		{ID: "terminal", Title: "Terminal"},
		{ID: "doodle", Title: "Doodle"},
	} {
		p.Content = func(registry.RenderContext) []string { return nil }
		require.NoError(t, r.Register(p))
	}
	return r
}

func newTestServer(t *testing.T) (*Server, *wm.Manager) {
	t.Helper()
	m := wm.New(state.NewMemoryStore(state.Empty()))
	s, err := NewServer(filepath.Join(t.TempDir(), "wb.sock"), m, viewport.NewObserver(m), WithCatalog(testCatalog(t)))
	require.NoError(t, err)
	return s, m
}

func call(t *testing.T, s *Server, cmd CommandType, payload any) *Response {
	t.Helper()
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		req.Payload = data
	}
	return s.handleCommand(req)
}

func TestHandleCommand_OpenListClose(t *testing.T) {
	s, m := newTestServer(t)

	resp := call(t, s, CommandOpen, WindowPayload{ID: "terminal"})
	require.Equal(t, "OK", resp.Status, resp.Error)
	assert.True(t, m.IsOpen("terminal"))

	resp = call(t, s, CommandOpen, WindowPayload{ID: "solitaire"})
	assert.Equal(t, "ERROR", resp.Status)
	assert.Contains(t, resp.Error, "Unknown program")

	resp = call(t, s, CommandListWindows, nil)
	require.Equal(t, "OK", resp.Status)
	var data WindowsData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Windows, 1)
	assert.Equal(t, "Terminal", data.Windows[0].Title)
	assert.True(t, data.Windows[0].Placed)
	assert.Equal(t, wm.DefaultWidth, data.Windows[0].Width)

	resp = call(t, s, CommandClose, WindowPayload{ID: "terminal"})
	require.Equal(t, "OK", resp.Status)
	assert.False(t, m.IsOpen("terminal"))

	resp = call(t, s, CommandClose, WindowPayload{ID: "terminal"})
	assert.Equal(t, "ERROR", resp.Status)
}

func TestHandleCommand_FocusRestoresMinimized(t *testing.T) {
	s, m := newTestServer(t)
	m.OpenProgram("terminal")
	m.OpenProgram("doodle")
	m.ToggleMinimize("terminal")

	resp := call(t, s, CommandFocus, WindowPayload{ID: "terminal"})
	require.Equal(t, "OK", resp.Status)

	states := m.WindowStates()
	assert.False(t, states["terminal"].IsMinimized)
	assert.Greater(t, states["terminal"].ZIndex, states["doodle"].ZIndex)
}

func TestHandleCommand_MoveAndResizeClampToViewport(t *testing.T) {
	s, m := newTestServer(t)
	m.OpenProgram("doodle")

	resp := call(t, s, CommandMove, MovePayload{ID: "doodle", X: -20, Y: 5000})
	require.Equal(t, "OK", resp.Status)
	ws, _ := m.Window("doodle")
	assert.Equal(t, geom.Point{X: 0, Y: 5000}, *ws.Position, "no viewport yet: only negatives are corrected")

	resp = call(t, s, CommandViewport, ViewportPayload{Width: 800, Height: 600})
	require.Equal(t, "OK", resp.Status)
	ws, _ = m.Window("doodle")
	assert.Equal(t, geom.Point{X: 0, Y: 300}, *ws.Position, "viewport change re-clamps")

	resp = call(t, s, CommandMove, MovePayload{ID: "doodle", X: 900, Y: 900})
	require.Equal(t, "OK", resp.Status)
	var p geom.Point
	require.NoError(t, json.Unmarshal(resp.Data, &p))
	assert.Equal(t, geom.Point{X: 400, Y: 600 - 300 - wm.TaskbarHeight}, p)

	resp = call(t, s, CommandResize, ResizePayload{ID: "doodle", Width: 10, Height: 10})
	require.Equal(t, "OK", resp.Status)
	ws, _ = m.Window("doodle")
	assert.Equal(t, geom.Size{Width: wm.MinWidth, Height: wm.MinHeight}, *ws.Size)

	m.ToggleMaximize("doodle")
	resp = call(t, s, CommandMove, MovePayload{ID: "doodle", X: 10, Y: 10})
	assert.Equal(t, "ERROR", resp.Status)
}

func TestHandleCommand_ResizeFromEdges(t *testing.T) {
	s, m := newTestServer(t)
	m.OpenProgram("doodle")
	m.UpdatePosition("doodle", geom.Point{X: 300, Y: 200})
	m.UpdateSize("doodle", geom.Size{Width: 300, Height: 200})
	call(t, s, CommandViewport, ViewportPayload{Width: 800, Height: 600})

	resp := call(t, s, CommandResize, ResizePayload{ID: "doodle", Width: 400, Height: 999, Edges: "w"})
	require.Equal(t, "OK", resp.Status, resp.Error)
	ws, _ := m.Window("doodle")
	assert.Equal(t, geom.Point{X: 200, Y: 200}, *ws.Position, "right edge stays pinned")
	assert.Equal(t, geom.Size{Width: 400, Height: 200}, *ws.Size, "height is not a moving edge")

	resp = call(t, s, CommandResize, ResizePayload{ID: "doodle", Width: 900, Height: 350, Edges: "nw"})
	require.Equal(t, "OK", resp.Status, resp.Error)
	ws, _ = m.Window("doodle")
	assert.Equal(t, geom.Point{X: 0, Y: 50}, *ws.Position)
	assert.Equal(t, geom.Size{Width: 600, Height: 350}, *ws.Size, "left edge stops at the desktop")

	resp = call(t, s, CommandResize, ResizePayload{ID: "doodle", Width: 400, Height: 300, Edges: "ns"})
	assert.Equal(t, "ERROR", resp.Status)
}

func TestHandleCommand_StatusAndErrors(t *testing.T) {
	s, m := newTestServer(t)
	m.OpenProgram("terminal")
	call(t, s, CommandViewport, ViewportPayload{Width: 1024, Height: 768})

	resp := call(t, s, CommandGetStatus, nil)
	require.Equal(t, "OK", resp.Status)
	var status StatusData
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, 1, status.OpenCount)
	assert.Equal(t, 1024, status.ViewportWidth)
	assert.True(t, status.DesktopRunning)

	assert.Equal(t, "ERROR", call(t, s, CommandViewport, ViewportPayload{Width: 0, Height: 10}).Status)
	assert.Equal(t, "ERROR", call(t, s, "BOGUS", nil).Status)
	assert.Equal(t, "ERROR", call(t, s, CommandMinimize, WindowPayload{}).Status)

	require.Equal(t, "OK", call(t, s, CommandReset, nil).Status)
	assert.Empty(t, m.OpenPrograms())
}

func TestClientServer_RoundTripOverSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "wb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	m := wm.New(state.NewMemoryStore(state.Empty()))
	s, err := NewServer(filepath.Join(dir, "s.sock"), m, viewport.NewObserver(m))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	second, err := NewServer(s.SocketPath(), m, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, second.Start(), ErrAlreadyRunning)

	c := NewClientWithSocket(s.SocketPath())
	require.NoError(t, c.Ping())
	require.NoError(t, c.Open("logs"))
	require.NoError(t, c.Viewport(640, 480))

	size, err := c.Resize("logs", 5000, 5000)
	require.NoError(t, err)
	ws, _ := m.Window("logs")
	assert.Equal(t, *ws.Size, size)
	assert.LessOrEqual(t, ws.Position.X+size.Width, 640)

	windows, err := c.ListWindows()
	require.NoError(t, err)
	require.Len(t, windows.Windows, 1)
	assert.Equal(t, "logs", windows.Windows[0].ID)

	err = c.Focus("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window not open")
}
