package mcp

import "github.com/1broseidon/workbench/internal/ipc"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
	Count   int              `json:"count"`
}

// ProgramInput targets a program by id.
type ProgramInput struct {
	ID string `json:"id" jsonschema:"required,Program id (e.g. terminal, doodle, logs, settings, explorer, filebrowser)"`
}

// WindowStateOutput reports the window after a tool ran.
type WindowStateOutput struct {
	ID     string          `json:"id"`
	Open   bool            `json:"open"`
	Window *ipc.WindowInfo `json:"window,omitempty"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID string `json:"id" jsonschema:"required,Program id of an open window"`
	X  int    `json:"x" jsonschema:"required,Left edge in desktop pixels"`
	Y  int    `json:"y" jsonschema:"required,Top edge in desktop pixels"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
	// Clamped is true when the desktop adjusted the requested position.
	Clamped bool `json:"clamped"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     string `json:"id" jsonschema:"required,Program id of an open window"`
	Width  int    `json:"width" jsonschema:"required,Width in desktop pixels (minimum 200)"`
	Height int    `json:"height" jsonschema:"required,Height in desktop pixels (minimum 100)"`
}

// ResizeWindowOutput is the output for the resize_window tool.
type ResizeWindowOutput struct {
	ID      string `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Clamped bool   `json:"clamped"`
}
