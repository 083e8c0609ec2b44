package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/runtimepath"
)

// Client handles IPC communication with a running desktop
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the default socket
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to desktop: %w (is the desktop running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("desktop error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// GetStatus retrieves desktop status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.send(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// ListWindows retrieves the open windows in open order.
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.send(CommandListWindows, nil)
	if err != nil {
		return nil, err
	}
	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return &data, nil
}

// Open opens a program, or focuses it when already open.
func (c *Client) Open(id string) error {
	_, err := c.send(CommandOpen, WindowPayload{ID: id})
	return err
}

// Close closes an open window.
func (c *Client) Close(id string) error {
	_, err := c.send(CommandClose, WindowPayload{ID: id})
	return err
}

// Focus restores and raises an open window.
func (c *Client) Focus(id string) error {
	_, err := c.send(CommandFocus, WindowPayload{ID: id})
	return err
}

// Minimize toggles the minimized flag.
func (c *Client) Minimize(id string) error {
	_, err := c.send(CommandMinimize, WindowPayload{ID: id})
	return err
}

// Maximize toggles the maximized flag.
func (c *Client) Maximize(id string) error {
	_, err := c.send(CommandMaximize, WindowPayload{ID: id})
	return err
}

// Move places a window and returns the position the desktop applied.
func (c *Client) Move(id string, x, y int) (geom.Point, error) {
	var p geom.Point
	resp, err := c.send(CommandMove, MovePayload{ID: id, X: x, Y: y})
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(resp.Data, &p); err != nil {
		return p, fmt.Errorf("failed to parse move result: %w", err)
	}
	return p, nil
}

// Resize sizes a window and returns the size the desktop applied.
func (c *Client) Resize(id string, width, height int) (geom.Size, error) {
	return c.ResizeFrom(id, "", width, height)
}

// ResizeFrom sizes a window by moving edges, e.g. "w" grows it leftwards
// with the right edge pinned.
func (c *Client) ResizeFrom(id, edges string, width, height int) (geom.Size, error) {
	var s geom.Size
	resp, err := c.send(CommandResize, ResizePayload{ID: id, Width: width, Height: height, Edges: edges})
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(resp.Data, &s); err != nil {
		return s, fmt.Errorf("failed to parse resize result: %w", err)
	}
	return s, nil
}

// Viewport reports a new desktop size, re-clamping every window.
func (c *Client) Viewport(width, height int) error {
	_, err := c.send(CommandViewport, ViewportPayload{Width: width, Height: height})
	return err
}

// Reset closes every window.
func (c *Client) Reset() error {
	_, err := c.send(CommandReset, nil)
	return err
}

// Ping checks if the desktop is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
