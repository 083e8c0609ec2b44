// Package mcp exposes the running desktop's window operations as Model
// Context Protocol tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/ipc"
)

const (
	ServerName    = "workbench"
	ServerVersion = "0.1.0"
)

// Desktop is the control-socket surface the tools call. *ipc.Client
// implements it.
type Desktop interface {
	ListWindows() (*ipc.WindowsData, error)
	Open(id string) error
	Close(id string) error
	Focus(id string) error
	Minimize(id string) error
	Maximize(id string) error
	Move(id string, x, y int) (geom.Point, error)
	Resize(id string, width, height int) (geom.Size, error)
}

// Server is the MCP server for desktop window control.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   Desktop
	logger    *zap.Logger
}

// NewServer creates a new MCP server that forwards to desktop.
func NewServer(desktop Desktop, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		desktop: desktop,
		logger:  logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List open windows on the running desktop in the order they were opened, with z-index, minimized/maximized flags and geometry in desktop pixels.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_program",
		Description: "Open a program window. If the program is already open it is brought to the front instead; a program never has two windows.",
	}, s.handleOpenProgram)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_program",
		Description: "Close an open program window. Its position and size are discarded.",
	}, s.handleCloseProgram)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring an open window to the front, restoring it first if it is minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_minimize",
		Description: "Minimize an open window, or restore it if already minimized. Position, size and stacking order are kept.",
	}, s.handleToggleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize",
		Description: "Maximize an open window to fill the desktop, or restore its previous geometry.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move an open, non-maximized window. The position is clamped so the window stays on the desktop and above the taskbar; the applied position is returned.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize an open, non-maximized window. Sizes are floored at 200x100 and capped to the desktop; the applied size is returned.",
	}, s.handleResizeWindow)
}
