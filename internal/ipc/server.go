package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/gesture"
	"github.com/1broseidon/workbench/internal/registry"
	"github.com/1broseidon/workbench/internal/runtimepath"
	"github.com/1broseidon/workbench/internal/state"
	"github.com/1broseidon/workbench/internal/viewport"
	"github.com/1broseidon/workbench/internal/wm"
)

// Desktop is the window manager surface the control socket drives.
// *wm.Manager implements it.
type Desktop interface {
	Snapshot() state.Snapshot
	Activate(id string)
	CloseProgram(id string)
	TaskbarClick(id string)
	ToggleMinimize(id string)
	ToggleMaximize(id string)
	UpdatePosition(id string, p geom.Point)
	UpdateSize(id string, s geom.Size)
	Reset()
}

// ErrAlreadyRunning is returned by Start when another desktop answers on the
// socket.
var ErrAlreadyRunning = errors.New("a desktop is already listening on the control socket")

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	desktop      Desktop
	observer     *viewport.Observer
	catalog      *registry.Registry
	logger       *zap.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCatalog validates OPEN against the given programs and adds titles to
// LIST_WINDOWS.
func WithCatalog(r *registry.Registry) ServerOption {
	return func(s *Server) { s.catalog = r }
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new IPC server. An empty socketPath uses the runtime
// default.
func NewServer(socketPath string, desktop Desktop, observer *viewport.Observer, opts ...ServerOption) (*Server, error) {
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	s := &Server{
		socketPath: socketPath,
		desktop:    desktop,
		observer:   observer,
		logger:     zap.NewNop(),
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return ErrAlreadyRunning
	}
	// Remove a stale socket left by a crashed desktop.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", zap.String("socket", s.socketPath))

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", zap.Error(err))
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", zap.Error(err))
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", zap.Error(err))
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", zap.Error(err))
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", zap.String("command", string(req.Command)))
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandOpen:
		return s.handleOpen(req.Payload)
	case CommandClose:
		return s.withOpenWindow(req.Payload, s.desktop.CloseProgram)
	case CommandFocus:
		return s.withOpenWindow(req.Payload, s.desktop.TaskbarClick)
	case CommandMinimize:
		return s.withOpenWindow(req.Payload, s.desktop.ToggleMinimize)
	case CommandMaximize:
		return s.withOpenWindow(req.Payload, s.desktop.ToggleMaximize)
	case CommandMove:
		return s.handleMove(req.Payload)
	case CommandResize:
		return s.handleResize(req.Payload)
	case CommandViewport:
		return s.handleViewport(req.Payload)
	case CommandReset:
		s.desktop.Reset()
		resp, _ := NewOKResponse(nil)
		return resp
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	snap := s.desktop.Snapshot()
	status := StatusData{
		OpenCount:      len(snap.OpenPrograms),
		TopZIndex:      snap.TopZIndex,
		Fullscreen:     snap.Fullscreen,
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DesktopRunning: true,
	}
	if vp, ok := s.viewport(); ok {
		status.ViewportWidth, status.ViewportHeight = vp.Width, vp.Height
	}
	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows() *Response {
	resp, _ := NewOKResponse(WindowsData{Windows: Windows(s.desktop.Snapshot(), s.catalog)})
	return resp
}

// Windows lists the open windows of snap in open order. Ids in the open
// list without a window state are skipped.
func Windows(snap state.Snapshot, catalog *registry.Registry) []WindowInfo {
	out := make([]WindowInfo, 0, len(snap.OpenPrograms))
	for _, id := range snap.OpenPrograms {
		ws, ok := snap.WindowStates[id]
		if !ok {
			continue
		}
		info := WindowInfo{
			ID:          id,
			IsMinimized: ws.IsMinimized,
			IsMaximized: ws.IsMaximized,
			ZIndex:      ws.ZIndex,
		}
		if catalog != nil {
			if p, ok := catalog.Lookup(id); ok {
				info.Title = p.Title
			}
		}
		if r, ok := ws.Placement(); ok {
			info.Placed = true
			info.X, info.Y, info.Width, info.Height = r.X, r.Y, r.Width, r.Height
		}
		out = append(out, info)
	}
	return out
}

func (s *Server) handleOpen(payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	if s.catalog != nil {
		if _, ok := s.catalog.Lookup(req.ID); !ok {
			return NewErrorResponse(fmt.Sprintf("Unknown program: %s", req.ID))
		}
	}
	s.desktop.Activate(req.ID)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) withOpenWindow(payload json.RawMessage, fn func(id string)) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	if _, err := s.openWindow(req.ID); err != nil {
		return NewErrorResponse(err.Error())
	}
	fn(req.ID)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) openWindow(id string) (state.WindowState, error) {
	if id == "" {
		return state.WindowState{}, fmt.Errorf("id is required")
	}
	ws, ok := s.desktop.Snapshot().WindowStates[id]
	if !ok {
		return state.WindowState{}, fmt.Errorf("window not open: %s", id)
	}
	return ws, nil
}

// handleMove places a window the way a drag would: inside the last observed
// viewport and above the taskbar. Before any viewport is known only negative
// coordinates are corrected.
func (s *Server) handleMove(payload json.RawMessage) *Response {
	var req MovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}
	ws, err := s.openWindow(req.ID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if ws.IsMaximized {
		return NewErrorResponse(fmt.Sprintf("Window is maximized: %s", req.ID))
	}

	p := geom.Point{X: req.X, Y: req.Y}
	if vp, ok := s.viewport(); ok {
		p = gesture.ClampOrigin(p, sizeOf(ws), vp)
	} else {
		p = geom.Point{X: max(0, p.X), Y: max(0, p.Y)}
	}
	s.desktop.UpdatePosition(req.ID, p)
	resp, _ := NewOKResponse(p)
	return resp
}

func (s *Server) handleResize(payload json.RawMessage) *Response {
	var req ResizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid resize payload: %v", err))
	}
	ws, err := s.openWindow(req.ID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if ws.IsMaximized {
		return NewErrorResponse(fmt.Sprintf("Window is maximized: %s", req.ID))
	}

	if req.Edges != "" {
		return s.resizeEdges(req, ws)
	}

	size := geom.Size{Width: req.Width, Height: req.Height}
	if vp, ok := s.viewport(); ok {
		size = gesture.ClampSize(originOf(ws), size, vp)
	} else {
		size = geom.Size{Width: max(wm.MinWidth, size.Width), Height: max(wm.MinHeight, size.Height)}
	}
	s.desktop.UpdateSize(req.ID, size)
	resp, _ := NewOKResponse(size)
	return resp
}

// resizeEdges solves the request the way a resize handle on those edges
// would: west and north edges pivot on the opposite edge, and edges not
// named keep their extent.
func (s *Server) resizeEdges(req ResizePayload, ws state.WindowState) *Response {
	dir, err := gesture.ParseDirection(req.Edges)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	start := geom.RectOf(originOf(ws), sizeOf(ws))
	delta := geom.Point{X: req.Width - start.Width, Y: req.Height - start.Height}
	if dir.Has(gesture.West) {
		delta.X = -delta.X
	}
	if dir.Has(gesture.North) {
		delta.Y = -delta.Y
	}
	vp, ok := s.viewport()
	if !ok {
		vp = geom.Size{Width: math.MaxInt32, Height: math.MaxInt32}
	}

	r := gesture.ResizeRect(dir, start, delta, vp)
	s.desktop.UpdateSize(req.ID, r.Size())
	if r.Origin() != start.Origin() {
		s.desktop.UpdatePosition(req.ID, r.Origin())
	}
	resp, _ := NewOKResponse(r.Size())
	return resp
}

func (s *Server) handleViewport(payload json.RawMessage) *Response {
	var req ViewportPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid viewport payload: %v", err))
	}
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse("width and height must be > 0")
	}
	if s.observer == nil {
		return NewErrorResponse("viewport observer unavailable")
	}
	s.observer.Observe(geom.Size{Width: req.Width, Height: req.Height})
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) viewport() (geom.Size, bool) {
	if s.observer == nil {
		return geom.Size{}, false
	}
	return s.observer.Last()
}

func sizeOf(ws state.WindowState) geom.Size {
	if ws.Size != nil {
		return *ws.Size
	}
	return geom.Size{Width: wm.DefaultWidth, Height: wm.DefaultHeight}
}

func originOf(ws state.WindowState) geom.Point {
	if ws.Position != nil {
		return *ws.Position
	}
	return geom.Point{}
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		os.Remove(s.socketPath)
	}
}
