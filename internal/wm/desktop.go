package wm

import (
	"slices"

	"github.com/1broseidon/workbench/internal/state"
)

// WindowStates returns a copy of every window state keyed by program id.
func (m *Manager) WindowStates() map[string]state.WindowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]state.WindowState, len(m.snap.WindowStates))
	for id, ws := range m.snap.WindowStates {
		out[id] = ws.Clone()
	}
	return out
}

// Window returns the state for id.
func (m *Manager) Window(id string) (state.WindowState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.snap.WindowStates[id]
	return ws.Clone(), ok
}

// OpenPrograms returns the open program ids in the order they were opened.
func (m *Manager) OpenPrograms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.snap.OpenPrograms...)
}

// IsOpen reports whether id is in the open list.
func (m *Manager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.snap.OpenPrograms, id)
}

// TopZIndex returns the highest z-index issued so far.
func (m *Manager) TopZIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.TopZIndex
}

// Snapshot returns a deep copy of the whole desktop state.
func (m *Manager) Snapshot() state.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

// Activate is what a desktop icon or start-menu entry does: focus the
// program when it is open, open it otherwise.
func (m *Manager) Activate(id string) {
	if m.IsOpen(id) {
		m.BringToFront(id)
		return
	}
	m.OpenProgram(id)
}

// TaskbarClick restores a minimized window and raises it; a visible window
// is just raised.
func (m *Manager) TaskbarClick(id string) {
	m.mutate(func() bool {
		ws, ok := m.snap.WindowStates[id]
		if !ok {
			return false
		}
		ws.IsMinimized = false
		ws.ZIndex = m.snap.TopZIndex + 1
		m.snap.WindowStates[id] = ws
		m.snap.TopZIndex++
		return true
	})
}

// TaskbarDoubleClick minimizes a visible window. Minimized windows are left
// alone.
func (m *Manager) TaskbarDoubleClick(id string) {
	m.mutate(func() bool {
		ws, ok := m.snap.WindowStates[id]
		if !ok || ws.IsMinimized {
			return false
		}
		ws.IsMinimized = true
		m.snap.WindowStates[id] = ws
		return true
	})
}

// Fullscreen reports whether the decorative frame is hidden.
func (m *Manager) Fullscreen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Fullscreen
}

// SetFullscreen persists the frame mode.
func (m *Manager) SetFullscreen(on bool) {
	m.mutate(func() bool {
		if m.snap.Fullscreen == on {
			return false
		}
		m.snap.Fullscreen = on
		return true
	})
}

// Reset closes every window without firing close notifications. The z-index
// counter is kept so indices are never reused.
func (m *Manager) Reset() {
	m.mutate(func() bool {
		if len(m.snap.OpenPrograms) == 0 && len(m.snap.WindowStates) == 0 {
			return false
		}
		m.snap.OpenPrograms = []string{}
		m.snap.WindowStates = make(map[string]state.WindowState)
		return true
	})
}
