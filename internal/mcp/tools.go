package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/1broseidon/workbench/internal/ipc"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("failed to list windows: %w", err)
	}
	windows := data.Windows
	if windows == nil {
		windows = []ipc.WindowInfo{}
	}
	return nil, ListWindowsOutput{Windows: windows, Count: len(windows)}, nil
}

func (s *Server) handleOpenProgram(_ context.Context, _ *mcpsdk.CallToolRequest, args ProgramInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowAction("open_program", args.ID, s.desktop.Open)
}

func (s *Server) handleCloseProgram(_ context.Context, _ *mcpsdk.CallToolRequest, args ProgramInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowAction("close_program", args.ID, s.desktop.Close)
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ProgramInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowAction("focus_window", args.ID, s.desktop.Focus)
}

func (s *Server) handleToggleMinimize(_ context.Context, _ *mcpsdk.CallToolRequest, args ProgramInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowAction("toggle_minimize", args.ID, s.desktop.Minimize)
}

func (s *Server) handleToggleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args ProgramInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowAction("toggle_maximize", args.ID, s.desktop.Maximize)
}

// windowAction runs fn for id and reports the resulting window.
func (s *Server) windowAction(tool, id string, fn func(string) error) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, WindowStateOutput{}, fmt.Errorf("id is required")
	}
	if err := fn(id); err != nil {
		s.logger.Warn("tool failed", zap.String("tool", tool), zap.String("id", id), zap.Error(err))
		return nil, WindowStateOutput{}, fmt.Errorf("%s %s: %w", tool, id, err)
	}
	s.logger.Debug("tool ran", zap.String("tool", tool), zap.String("id", id))

	out := WindowStateOutput{ID: id}
	if info, ok := s.lookup(id); ok {
		out.Open = true
		out.Window = &info
	}
	return nil, out, nil
}

func (s *Server) lookup(id string) (ipc.WindowInfo, bool) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return ipc.WindowInfo{}, false
	}
	for _, w := range data.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return ipc.WindowInfo{}, false
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	if strings.TrimSpace(args.ID) == "" {
		return nil, MoveWindowOutput{}, fmt.Errorf("id is required")
	}
	p, err := s.desktop.Move(args.ID, args.X, args.Y)
	if err != nil {
		return nil, MoveWindowOutput{}, fmt.Errorf("move_window %s: %w", args.ID, err)
	}
	return nil, MoveWindowOutput{
		ID:      args.ID,
		X:       p.X,
		Y:       p.Y,
		Clamped: p.X != args.X || p.Y != args.Y,
	}, nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, ResizeWindowOutput, error) {
	if strings.TrimSpace(args.ID) == "" {
		return nil, ResizeWindowOutput{}, fmt.Errorf("id is required")
	}
	size, err := s.desktop.Resize(args.ID, args.Width, args.Height)
	if err != nil {
		return nil, ResizeWindowOutput{}, fmt.Errorf("resize_window %s: %w", args.ID, err)
	}
	return nil, ResizeWindowOutput{
		ID:      args.ID,
		Width:   size.Width,
		Height:  size.Height,
		Clamped: size.Width != args.Width || size.Height != args.Height,
	}, nil
}
