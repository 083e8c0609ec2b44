// Package state holds the persisted desktop state: window geometry and
// visibility, the global z-order counter, and the list of open programs.
package state

import (
	"sort"

	"github.com/1broseidon/workbench/internal/geom"
)

// WindowState is the persisted record for one open program's window.
//
// Position and Size are optional in storage; a record missing either one is
// "unplaced" and is skipped by viewport clamping. Use Placement to read the
// geometry rather than inspecting the pointers directly.
type WindowState struct {
	ID          string      `json:"id"`
	IsMinimized bool        `json:"isMinimized"`
	IsMaximized bool        `json:"isMaximized"`
	ZIndex      int         `json:"zIndex"`
	Position    *geom.Point `json:"position,omitempty"`
	Size        *geom.Size  `json:"size,omitempty"`
}

// Placement returns the window's geometry and true when both position and
// size are present. A window at the origin is placed.
func (w WindowState) Placement() (geom.Rect, bool) {
	if w.Position == nil || w.Size == nil {
		return geom.Rect{}, false
	}
	return geom.RectOf(*w.Position, *w.Size), true
}

// Clone returns a deep copy so callers never alias stored pointers.
func (w WindowState) Clone() WindowState {
	out := w
	if w.Position != nil {
		p := *w.Position
		out.Position = &p
	}
	if w.Size != nil {
		s := *w.Size
		out.Size = &s
	}
	return out
}

// Snapshot is everything the store persists.
type Snapshot struct {
	WindowStates map[string]WindowState `json:"windowStates"`
	TopZIndex    int                    `json:"topZIndex"`
	OpenPrograms []string               `json:"openPrograms"`
	Fullscreen   bool                   `json:"fullscreen,omitempty"`
}

// Empty returns the initial snapshot: no windows, counter at zero.
func Empty() Snapshot {
	return Snapshot{
		WindowStates: make(map[string]WindowState),
		OpenPrograms: []string{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		WindowStates: make(map[string]WindowState, len(s.WindowStates)),
		TopZIndex:    s.TopZIndex,
		OpenPrograms: append([]string{}, s.OpenPrograms...),
		Fullscreen:   s.Fullscreen,
	}
	for id, ws := range s.WindowStates {
		out.WindowStates[id] = ws.Clone()
	}
	return out
}

// normalize repairs what a hand-edited or older file may leave out: nil
// collections, and entries whose id field disagrees with their key.
func (s *Snapshot) normalize() {
	if s.WindowStates == nil {
		s.WindowStates = make(map[string]WindowState)
	}
	if s.OpenPrograms == nil {
		s.OpenPrograms = []string{}
	}
	for id, ws := range s.WindowStates {
		if ws.ID != id {
			ws.ID = id
			s.WindowStates[id] = ws
		}
	}
}

// ByZIndex returns the window states ordered bottom to top. Ties break on id
// so the order is stable.
func (s Snapshot) ByZIndex() []WindowState {
	out := make([]WindowState, 0, len(s.WindowStates))
	for _, ws := range s.WindowStates {
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}
