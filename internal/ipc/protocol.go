package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandOpen        CommandType = "OPEN"
	CommandClose       CommandType = "CLOSE"
	CommandFocus       CommandType = "FOCUS"
	CommandMinimize    CommandType = "MINIMIZE"
	CommandMaximize    CommandType = "MAXIMIZE"
	CommandMove        CommandType = "MOVE"
	CommandResize      CommandType = "RESIZE"
	CommandViewport    CommandType = "VIEWPORT"
	CommandReset       CommandType = "RESET"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	OpenCount      int   `json:"open_count"`
	TopZIndex      int   `json:"top_z_index"`
	ViewportWidth  int   `json:"viewport_width,omitempty"`
	ViewportHeight int   `json:"viewport_height,omitempty"`
	Fullscreen     bool  `json:"fullscreen"`
	UptimeSeconds  int64 `json:"uptime_seconds"`
	DesktopRunning bool  `json:"desktop_running"`
}

// WindowInfo describes one open window. Geometry fields are only meaningful
// when Placed is true.
type WindowInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	IsMinimized bool   `json:"is_minimized"`
	IsMaximized bool   `json:"is_maximized"`
	ZIndex      int    `json:"z_index"`
	Placed      bool   `json:"placed"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// WindowsData represents the data returned by LIST_WINDOWS, in open order.
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowPayload targets one program for OPEN, CLOSE, FOCUS, MINIMIZE and
// MAXIMIZE.
type WindowPayload struct {
	ID string `json:"id"`
}

type MovePayload struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type ResizePayload struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Edges names the edges that move, as compass letters ("w", "nw").
	// Empty keeps the origin fixed.
	Edges string `json:"edges,omitempty"`
}

type ViewportPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
