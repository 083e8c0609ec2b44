// Package wm is the window manager: it owns every invariant over window
// state (single instance per program, z-order, minimize/maximize flags,
// viewport containment) and persists each change through a state.Storage.
package wm

import (
	"math/rand/v2"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/state"
)

// Window geometry constants, in pixels.
const (
	MinWidth      = 200
	MinHeight     = 100
	DefaultWidth  = 400
	DefaultHeight = 300

	// New windows open at a random origin in [SpawnMin, SpawnMax] on both axes.
	SpawnMin = 100
	SpawnMax = 200

	// TaskbarHeight is reserved below windows while dragging and resizing.
	TaskbarHeight = 48
	// MaximizedTaskbarReserve is reserved below a maximized window.
	MaximizedTaskbarReserve = 40
)

// Notifier receives the fire-and-forget side effects of opening and
// closing programs (audio cues in the desktop).
type Notifier interface {
	WindowOpened(id string)
	WindowClosed(id string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the open/close side-effect sink.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithRand sets the random source used for initial window placement.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithOnChange registers a callback invoked after every mutation, outside
// the manager's lock. The desktop uses it to re-render when changes arrive
// from the control socket.
func WithOnChange(fn func()) Option {
	return func(m *Manager) { m.onChange = fn }
}

// Manager tracks open programs and their window state.
type Manager struct {
	mu       sync.Mutex
	store    state.Storage
	snap     state.Snapshot
	notifier Notifier
	rng      *rand.Rand
	logger   *zap.Logger
	onChange func()

	// seq numbers mutations under mu. saveMu orders writes to the store;
	// saved is the newest seq handed to it, so a slow older save can never
	// land after a newer one.
	seq    uint64
	saveMu sync.Mutex
	saved  uint64
}

// New creates a manager and reads the initial snapshot from store. A store
// that fails to load is logged and the manager starts empty; the next change
// overwrites the unreadable data.
func New(store state.Storage, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	snap, err := store.Load()
	if err != nil {
		m.logger.Warn("failed to load desktop state, starting empty", zap.Error(err))
		snap = state.Empty()
	}
	m.snap = snap.Clone()
	m.repairOpenList()
	return m
}

// repairOpenList drops duplicate ids from the open list. Entries without a
// window state are kept; the desktop skips them until they are closed.
func (m *Manager) repairOpenList() {
	seen := make(map[string]struct{}, len(m.snap.OpenPrograms))
	out := m.snap.OpenPrograms[:0]
	for _, id := range m.snap.OpenPrograms {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	m.snap.OpenPrograms = out
}

// commit persists snap, the state after mutation seq, and fires the change
// callback. Must be called without m.mu held; snap is a private copy. A
// snapshot older than one already written is dropped.
func (m *Manager) commit(seq uint64, snap state.Snapshot) {
	m.saveMu.Lock()
	if seq > m.saved {
		m.saved = seq
		if err := m.store.Save(snap); err != nil {
			m.logger.Error("failed to persist desktop state", zap.Error(err))
		}
	}
	m.saveMu.Unlock()

	if m.onChange != nil {
		m.onChange()
	}
}

// mutate runs fn under the lock and, when it reports a change, persists the
// resulting snapshot.
func (m *Manager) mutate(fn func() bool) {
	m.mu.Lock()
	changed := fn()
	var (
		seq  uint64
		snap state.Snapshot
	)
	if changed {
		m.seq++
		seq = m.seq
		snap = m.snap.Clone()
	}
	m.mu.Unlock()

	if changed {
		m.commit(seq, snap)
	}
}

// OpenProgram opens a window for id. Opening an id that is already open is
// a no-op; callers wanting focus call BringToFront (or use Activate).
func (m *Manager) OpenProgram(id string) {
	opened := false
	m.mutate(func() bool {
		if slices.Contains(m.snap.OpenPrograms, id) {
			return false
		}
		m.snap.OpenPrograms = append(m.snap.OpenPrograms, id)
		m.snap.WindowStates[id] = state.WindowState{
			ID:       id,
			ZIndex:   m.snap.TopZIndex + 1,
			Position: &geom.Point{X: m.spawnOffset(), Y: m.spawnOffset()},
			Size:     &geom.Size{Width: DefaultWidth, Height: DefaultHeight},
		}
		m.snap.TopZIndex++
		opened = true
		return true
	})
	if opened {
		m.notify(func(n Notifier) { n.WindowOpened(id) })
	}
}

func (m *Manager) spawnOffset() int {
	return SpawnMin + m.rng.IntN(SpawnMax-SpawnMin+1)
}

// CloseProgram removes id from the open list and deletes its window state.
// The close notification fires even when id was not open.
func (m *Manager) CloseProgram(id string) {
	m.notify(func(n Notifier) { n.WindowClosed(id) })
	m.mutate(func() bool {
		_, had := m.snap.WindowStates[id]
		idx := slices.Index(m.snap.OpenPrograms, id)
		if !had && idx < 0 {
			return false
		}
		if idx >= 0 {
			m.snap.OpenPrograms = slices.Delete(m.snap.OpenPrograms, idx, idx+1)
		}
		delete(m.snap.WindowStates, id)
		return true
	})
}

// BringToFront gives id the next z-index. No-op when id has no window.
func (m *Manager) BringToFront(id string) {
	m.mutate(func() bool {
		ws, ok := m.snap.WindowStates[id]
		if !ok {
			return false
		}
		ws.ZIndex = m.snap.TopZIndex + 1
		m.snap.WindowStates[id] = ws
		m.snap.TopZIndex++
		return true
	})
}

// ToggleMinimize flips the minimized flag. Z-order and geometry are kept.
func (m *Manager) ToggleMinimize(id string) {
	m.update(id, func(ws *state.WindowState) { ws.IsMinimized = !ws.IsMinimized })
}

// ToggleMaximize flips the maximized flag. The stored position and size are
// left alone and serve as the restore geometry.
func (m *Manager) ToggleMaximize(id string) {
	m.update(id, func(ws *state.WindowState) { ws.IsMaximized = !ws.IsMaximized })
}

// UpdatePosition overwrites the window origin. No clamping happens here; the
// pointer path clamps before calling and AdjustWindowPositions re-clamps on
// viewport changes.
func (m *Manager) UpdatePosition(id string, p geom.Point) {
	m.update(id, func(ws *state.WindowState) { ws.Position = &geom.Point{X: p.X, Y: p.Y} })
}

// UpdateSize overwrites the window size, unclamped like UpdatePosition.
func (m *Manager) UpdateSize(id string, s geom.Size) {
	m.update(id, func(ws *state.WindowState) { ws.Size = &geom.Size{Width: s.Width, Height: s.Height} })
}

func (m *Manager) update(id string, fn func(ws *state.WindowState)) {
	m.mutate(func() bool {
		ws, ok := m.snap.WindowStates[id]
		if !ok {
			return false
		}
		fn(&ws)
		m.snap.WindowStates[id] = ws
		return true
	})
}

// AdjustWindowPositions clamps every placed window into a viewport of the
// given size: x to [0, width-w] and y to [0, height-h], the lower bound
// winning when a window is larger than the viewport. Unplaced windows are
// left untouched.
func (m *Manager) AdjustWindowPositions(width, height int) {
	m.mutate(func() bool {
		changed := false
		for id, ws := range m.snap.WindowStates {
			r, ok := ws.Placement()
			if !ok {
				continue
			}
			x := geom.Clamp(r.X, 0, width-r.Width)
			y := geom.Clamp(r.Y, 0, height-r.Height)
			if x == r.X && y == r.Y {
				continue
			}
			ws.Position = &geom.Point{X: x, Y: y}
			m.snap.WindowStates[id] = ws
			changed = true
		}
		return changed
	})
}

// notify delivers a side effect without letting a faulty notifier reach the
// caller.
func (m *Manager) notify(fn func(Notifier)) {
	if m.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("window notifier panic recovered", zap.Any("panic", r))
		}
	}()
	fn(m.notifier)
}
