package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/ipc"
)

var _ Desktop = (*ipc.Client)(nil)

type fakeDesktop struct {
	windows []ipc.WindowInfo
	calls   []string
	failOn  string
}

func (f *fakeDesktop) ListWindows() (*ipc.WindowsData, error) {
	return &ipc.WindowsData{Windows: f.windows}, nil
}

func (f *fakeDesktop) record(op, id string) error {
	f.calls = append(f.calls, op+":"+id)
	if op == f.failOn {
		return errors.New("desktop error: window not open: " + id)
	}
	return nil
}

func (f *fakeDesktop) Open(id string) error {
	if err := f.record("open", id); err != nil {
		return err
	}
	f.windows = append(f.windows, ipc.WindowInfo{ID: id, Placed: true, Width: 400, Height: 300})
	return nil
}

func (f *fakeDesktop) Close(id string) error {
	if err := f.record("close", id); err != nil {
		return err
	}
	out := f.windows[:0]
	for _, w := range f.windows {
		if w.ID != id {
			out = append(out, w)
		}
	}
	f.windows = out
	return nil
}

func (f *fakeDesktop) Focus(id string) error    { return f.record("focus", id) }
func (f *fakeDesktop) Minimize(id string) error { return f.record("minimize", id) }
func (f *fakeDesktop) Maximize(id string) error { return f.record("maximize", id) }

func (f *fakeDesktop) Move(id string, x, y int) (geom.Point, error) {
	return geom.Point{X: max(0, x), Y: max(0, y)}, f.record("move", id)
}

func (f *fakeDesktop) Resize(id string, w, h int) (geom.Size, error) {
	return geom.Size{Width: max(200, w), Height: max(100, h)}, f.record("resize", id)
}

func TestOpenAndCloseReportWindowState(t *testing.T) {
	d := &fakeDesktop{}
	s := NewServer(d, nil)
	ctx := context.Background()

	_, out, err := s.handleOpenProgram(ctx, nil, ProgramInput{ID: "terminal"})
	require.NoError(t, err)
	assert.True(t, out.Open)
	require.NotNil(t, out.Window)
	assert.Equal(t, 400, out.Window.Width)

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	_, out, err = s.handleCloseProgram(ctx, nil, ProgramInput{ID: "terminal"})
	require.NoError(t, err)
	assert.False(t, out.Open)
	assert.Nil(t, out.Window)
}

func TestWindowActions_ValidateAndWrapErrors(t *testing.T) {
	d := &fakeDesktop{failOn: "focus"}
	s := NewServer(d, nil)
	ctx := context.Background()

	_, _, err := s.handleToggleMinimize(ctx, nil, ProgramInput{ID: "  "})
	require.Error(t, err)
	assert.Empty(t, d.calls, "blank ids never reach the desktop")

	_, _, err = s.handleFocusWindow(ctx, nil, ProgramInput{ID: "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "focus_window ghost")

	_, _, err = s.handleToggleMaximize(ctx, nil, ProgramInput{ID: "doodle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"focus:ghost", "maximize:doodle"}, d.calls)
}

func TestMoveAndResizeReportClamping(t *testing.T) {
	s := NewServer(&fakeDesktop{}, nil)
	ctx := context.Background()

	_, moved, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: "doodle", X: -5, Y: 40})
	require.NoError(t, err)
	assert.Equal(t, MoveWindowOutput{ID: "doodle", X: 0, Y: 40, Clamped: true}, moved)

	_, sized, err := s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: "doodle", Width: 640, Height: 480})
	require.NoError(t, err)
	assert.False(t, sized.Clamped)

	_, _, err = s.handleResizeWindow(ctx, nil, ResizeWindowInput{Width: 1, Height: 1})
	assert.Error(t, err)
}
