// Package desktop is the terminal desktop surface: the decorative frame,
// program icons, windows, taskbar, start menu and login gate, drawn with
// bubbletea and driven by the window manager.
package desktop

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/gesture"
	"github.com/1broseidon/workbench/internal/registry"
	"github.com/1broseidon/workbench/internal/sounds"
	"github.com/1broseidon/workbench/internal/viewport"
	"github.com/1broseidon/workbench/internal/wm"
)

const doubleClickWindow = 400 * time.Millisecond

// Feed is the live feed as the desktop uses it.
type Feed interface {
	registry.Feed
	Online() int
	Connected() bool
	Run(ctx context.Context)
}

// Session backs the login gate.
type Session interface {
	Address() string
	Check(ctx context.Context) (bool, error)
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Options wires a Model. Feed and Session are optional; without a Session
// there is no login gate.
type Options struct {
	Manager  *wm.Manager
	Observer *viewport.Observer
	Programs []registry.Program
	Feed     Feed
	Session  Session
	Sounds   *sounds.Player
	Changes  *Changes
	Logger   *zap.Logger

	// Cell is the pixel size of one terminal cell.
	Cell          geom.Size
	IconColumns   int
	FrameInterval time.Duration
}

// Changes wakes the UI loop when state changes behind its back: control
// socket commands, feed traffic. Notify never blocks.
type Changes struct {
	ch chan struct{}
}

func NewChanges() *Changes {
	return &Changes{ch: make(chan struct{}, 1)}
}

func (c *Changes) Notify() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func (c *Changes) wait() tea.Cmd {
	return func() tea.Msg {
		<-c.ch
		return changeMsg{}
	}
}

type gate int

const (
	gateOpen gate = iota
	gateChecking
	gateLocked
	gateSigning
)

type (
	changeMsg struct{}
	frameMsg  struct{}
	clockMsg  time.Time

	sessionMsg struct {
		ok  bool
		err error
	}
	loginMsg  struct{ err error }
	logoutMsg struct{ err error }
)

type click struct {
	at  time.Time
	hit hit
}

// Model is the bubbletea model of the desktop.
type Model struct {
	mgr      *wm.Manager
	observer *viewport.Observer
	programs []registry.Program
	byID     map[string]registry.Program
	feed     Feed
	session  Session
	sounds   *sounds.Player
	changes  *Changes
	logger   *zap.Logger
	styles   []lipgloss.Style

	cell          geom.Size
	iconColumns   int
	frameInterval time.Duration
	quip          string

	ctx        context.Context
	feedCancel context.CancelFunc

	cols, rows int
	views      map[string]*gesture.View
	unsubs     map[string]func()

	// active is the view that owns the pointer between a gesture's begin
	// and end.
	active    *gesture.View
	flushing  bool
	menuOpen  bool
	lastClick click

	gate     gate
	loginErr string

	now   func() time.Time
	clock time.Time
}

var quips = []string{
	"I've waited a long time for this...",
	"Booting up the nostalgia drive...",
	"I love my new computer!",
	"Does the terminal actually work?",
	"I'm afraid this may cause extreme satisfaction...",
}

// New builds a desktop model. The context bounds background work the model
// starts, such as the feed connection.
func New(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cell := opts.Cell
	if cell.Width <= 0 || cell.Height <= 0 {
		cell = geom.Size{Width: 8, Height: 16}
	}
	columns := opts.IconColumns
	if columns <= 0 {
		columns = 4
	}
	frame := opts.FrameInterval
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}

	m := &Model{
		mgr:           opts.Manager,
		observer:      opts.Observer,
		programs:      opts.Programs,
		byID:          make(map[string]registry.Program, len(opts.Programs)),
		feed:          opts.Feed,
		session:       opts.Session,
		sounds:        opts.Sounds,
		changes:       opts.Changes,
		logger:        logger,
		styles:        defaultStyles(),
		cell:          cell,
		iconColumns:   columns,
		frameInterval: frame,
		quip:          quips[rand.IntN(len(quips))],
		ctx:           ctx,
		views:         make(map[string]*gesture.View),
		unsubs:        make(map[string]func()),
		now:           time.Now,
	}
	for _, p := range opts.Programs {
		m.byID[p.ID] = p
	}
	m.clock = m.now()
	if m.session != nil {
		m.gate = gateChecking
	}
	return m
}

func (m *Model) layout() layout {
	return layout{cols: m.cols, rows: m.rows, cell: m.cell, fullscreen: m.mgr.Fullscreen()}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickClock()}
	if m.changes != nil {
		cmds = append(cmds, m.changes.wait())
	}
	if m.session != nil {
		cmds = append(cmds, m.checkSession())
	} else {
		m.openGate()
	}
	return tea.Batch(cmds...)
}

func (m *Model) tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m *Model) scheduleFlush() tea.Cmd {
	if m.flushing {
		return nil
	}
	m.flushing = true
	return tea.Tick(m.frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncWindows()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.observeViewport()
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.gate != gateOpen {
			return nil
		}
		return m.handleMouse(msg)

	case frameMsg:
		m.flushing = false
		if m.active != nil {
			m.active.Flush()
		}
		return nil

	case clockMsg:
		m.clock = time.Time(msg)
		return m.tickClock()

	case changeMsg:
		if m.changes == nil {
			return nil
		}
		return m.changes.wait()

	case sessionMsg:
		if msg.err != nil {
			m.logger.Warn("session check failed", zap.Error(msg.err))
		}
		if msg.ok {
			m.openGate()
		} else {
			m.gate = gateLocked
		}
		return nil

	case loginMsg:
		if msg.err != nil {
			m.logger.Warn("login failed", zap.Error(msg.err))
			m.gate = gateLocked
			m.loginErr = msg.err.Error()
			return nil
		}
		m.loginErr = ""
		m.openGate()
		m.sounds.Play(sounds.CueLogin)
		return nil

	case logoutMsg:
		if msg.err != nil {
			m.loginErr = msg.err.Error()
		}
		return nil
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Quit) {
		return tea.Quit
	}

	switch m.gate {
	case gateLocked:
		if key.Matches(msg, keys.Connect) {
			m.gate = gateSigning
			m.loginErr = ""
			return m.login()
		}
		return nil
	case gateOpen:
	default:
		return nil
	}

	switch {
	case key.Matches(msg, keys.Fullscreen):
		m.mgr.SetFullscreen(!m.mgr.Fullscreen())
		m.observeViewport()
	case key.Matches(msg, keys.CloseMenu):
		m.menuOpen = false
	case key.Matches(msg, keys.Disconnect):
		return m.logout()
	}
	return nil
}

// observeViewport reports the desktop's pixel size to the observer, which
// re-clamps windows when it changed.
func (m *Model) observeViewport() {
	if m.observer == nil {
		return
	}
	m.observer.Observe(m.layout().desktop())
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	l := m.layout()
	pointer := l.toPixel(msg.X, msg.Y)

	if m.active != nil {
		switch msg.Action {
		case tea.MouseActionMotion:
			if m.active.Move(pointer, l.desktop()) {
				return m.scheduleFlush()
			}
		case tea.MouseActionRelease:
			m.logger.Debug("gesture ended",
				zap.String("window", m.active.ID()),
				zap.Stringer("phase", m.active.Phase()),
				zap.Stringer("edges", m.active.Direction()),
			)
			m.active.End()
			m.active = nil
		}
		return nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	h := m.hitTest(msg.X, msg.Y)
	now := m.now()
	double := h.kind != hitNone && h.same(m.lastClick.hit) && now.Sub(m.lastClick.at) <= doubleClickWindow
	m.lastClick = click{at: now, hit: h}
	if double {
		// A third click starts a new pair.
		m.lastClick = click{}
	}

	if m.menuOpen && h.kind != hitMenuItem {
		m.menuOpen = false
		if h.kind == hitStart {
			return nil
		}
	}

	switch h.kind {
	case hitStart:
		m.menuOpen = true
	case hitMenuItem:
		return m.chooseMenuItem(h.index)
	case hitTaskEntry:
		if double {
			m.mgr.TaskbarDoubleClick(h.id)
		} else {
			m.mgr.TaskbarClick(h.id)
		}
	case hitIcon:
		m.mgr.Activate(h.id)
	case hitMinimize:
		m.mgr.ToggleMinimize(h.id)
	case hitMaximize:
		m.mgr.ToggleMaximize(h.id)
	case hitClose:
		m.mgr.CloseProgram(h.id)
	case hitTitle:
		v := m.views[h.id]
		switch {
		case double:
			v.DoubleClickTitle()
		case v.BeginDrag(pointer):
			m.active = v
		default:
			m.mgr.BringToFront(h.id)
		}
	case hitEdge:
		v := m.views[h.id]
		if v.BeginResize(pointer, h.dir) {
			m.active = v
		} else {
			m.mgr.BringToFront(h.id)
		}
	case hitBody:
		m.mgr.BringToFront(h.id)
	}
	return nil
}

// syncWindows keeps one view and one feed subscription per open program and
// drops those of closed programs, abandoning any gesture they were in.
func (m *Model) syncWindows() {
	open := make(map[string]bool)
	for _, id := range m.mgr.OpenPrograms() {
		open[id] = true
		if m.views[id] == nil {
			m.views[id] = gesture.NewView(id, m.mgr)
		}
		if m.feed == nil || m.unsubs[id] != nil {
			continue
		}
		if p, ok := m.byID[id]; ok && p.SocketEvents != nil {
			m.unsubs[id] = p.SocketEvents(m.feed)
		}
	}
	for id, v := range m.views {
		if open[id] {
			continue
		}
		v.Detach()
		if m.active == v {
			m.active = nil
		}
		delete(m.views, id)
		if unsub := m.unsubs[id]; unsub != nil {
			unsub()
			delete(m.unsubs, id)
		}
	}
}

type menuEntry struct {
	label  string
	id     string
	logout bool
}

func (m *Model) menuEntries() []menuEntry {
	out := make([]menuEntry, 0, len(m.programs)+1)
	for _, p := range m.programs {
		out = append(out, menuEntry{label: p.Icon + " " + p.Title, id: p.ID})
	}
	if m.session != nil {
		out = append(out, menuEntry{label: "⏻ Disconnect Wallet", logout: true})
	}
	return out
}

func (m *Model) chooseMenuItem(i int) tea.Cmd {
	m.menuOpen = false
	entries := m.menuEntries()
	if i < 0 || i >= len(entries) {
		return nil
	}
	if entries[i].logout {
		return m.logout()
	}
	m.mgr.Activate(entries[i].id)
	return nil
}

// Close releases feed subscriptions and stops the feed.
func (m *Model) Close() {
	for id, unsub := range m.unsubs {
		unsub()
		delete(m.unsubs, id)
	}
	m.stopFeed()
}
