// Package feed keeps the desktop connected to the live feed server: a
// websocket carrying typed JSON messages that programs subscribe to.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MsgUsersUpdate carries the number of connected users in its data field.
const MsgUsersUpdate = "users-update"

// ErrNotConnected is returned by Send while no connection is up.
var ErrNotConnected = errors.New("feed not connected")

// Message is the envelope every feed frame uses.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReconnect sets the minimum spacing between connection attempts. A
// connection that stayed up longer than that is redialed at once.
func WithReconnect(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.reconnect = d
		}
	}
}

// WithOnChange registers a callback fired when the online count or the
// connection state changes, and after subscribers handled a message.
func WithOnChange(fn func()) Option {
	return func(c *Client) { c.onChange = fn }
}

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// Client is a reconnecting feed connection. Subscribe and Send may be
// called from any goroutine.
type Client struct {
	url       string
	reconnect time.Duration
	dialer    *websocket.Dialer
	logger    *zap.Logger
	onChange  func()

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	online    int
	subs      map[string]map[int]func(json.RawMessage)
	nextSub   int

	writeMu sync.Mutex
}

// NewClient creates a client for the feed at url. Nothing is dialed until Run.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:       url,
		reconnect: 5 * time.Second,
		dialer:    websocket.DefaultDialer,
		logger:    zap.NewNop(),
		subs:      make(map[string]map[int]func(json.RawMessage)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Online returns the last reported number of connected users.
func (c *Client) Online() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Connected reports whether the websocket is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Subscribe registers fn for messages of msgType. fn receives the whole
// frame and runs on the read goroutine.
func (c *Client) Subscribe(msgType string, fn func(msg json.RawMessage)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	if c.subs[msgType] == nil {
		c.subs[msgType] = make(map[int]func(json.RawMessage))
	}
	c.subs[msgType][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs[msgType], id)
			if len(c.subs[msgType]) == 0 {
				delete(c.subs, msgType)
			}
		})
	}
}

// Send writes one message to the server.
func (c *Client) Send(msgType string, data any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg := Message{Type: msgType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", msgType, err)
		}
		msg.Data = raw
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msgType, err)
	}
	return nil
}

// Run connects and keeps reconnecting until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	c.logger.Info("feed client started", zap.String("url", c.url), zap.Duration("reconnect", c.reconnect))
	dials := rate.NewLimiter(rate.Every(c.reconnect), 1)
	for {
		if err := dials.Wait(ctx); err != nil {
			c.logger.Info("feed client stopped")
			return
		}
		if err := c.session(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("feed connection lost", zap.Error(err))
		}
	}
}

// session dials once and reads until the connection fails.
func (c *Client) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.url, err)
	}
	c.setConn(conn)
	defer c.setConn(nil)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	c.logger.Info("feed connected", zap.String("url", c.url))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(data)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn != nil && conn == nil {
		c.conn.Close()
	}
	c.conn = conn
	changed := c.connected != (conn != nil)
	c.connected = conn != nil
	c.mu.Unlock()
	if changed {
		c.changed()
	}
}

func (c *Client) dispatch(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.logger.Debug("dropping malformed feed message", zap.ByteString("data", data))
		return
	}

	if msg.Type == MsgUsersUpdate {
		c.setOnline(msg.Data)
	}

	c.mu.Lock()
	handlers := make([]func(json.RawMessage), 0, len(c.subs[msg.Type]))
	for _, fn := range c.subs[msg.Type] {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		c.call(msg.Type, fn, data)
	}
	if len(handlers) > 0 {
		c.changed()
	}
}

func (c *Client) call(msgType string, fn func(json.RawMessage), data []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("feed subscriber panic recovered", zap.String("type", msgType), zap.Any("panic", r))
		}
	}()
	fn(json.RawMessage(data))
}

// setOnline accepts the count as a number or a numeric string.
func (c *Client) setOnline(raw json.RawMessage) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return
		}
		if n, err = strconv.Atoi(s); err != nil {
			return
		}
	}
	c.mu.Lock()
	changed := c.online != n
	c.online = n
	c.mu.Unlock()
	if changed {
		c.changed()
	}
}

func (c *Client) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
