// Package gesture turns raw pointer events on one window's chrome into window
// manager calls: title-bar drags, edge and corner resizes, and the rendering
// geometry that goes with them.
package gesture

import (
	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/state"
	"github.com/1broseidon/workbench/internal/wm"
)

// Manager is the part of the window manager a View drives.
type Manager interface {
	Window(id string) (state.WindowState, bool)
	BringToFront(id string)
	ToggleMaximize(id string)
	UpdatePosition(id string, p geom.Point)
	UpdateSize(id string, s geom.Size)
}

// View holds one window's gesture state. It is owned by the UI loop and is
// not safe for concurrent use.
type View struct {
	id  string
	mgr Manager

	phase Phase
	dir   Direction

	// Dragging: pointer offset inside the window at grab time.
	dragOffset geom.Point
	pending    Coalescer[geom.Point]

	// Resizing: values captured at pointer-down.
	startPointer geom.Point
	startPos     geom.Point
	startSize    geom.Size
	// draft is the origin used for rendering while a west-edge resize is in
	// flight. It reaches the manager once, on End.
	draft geom.Point
}

// NewView creates an idle view for the window of program id.
func NewView(id string, mgr Manager) *View {
	return &View{id: id, mgr: mgr}
}

// ID returns the program id this view drives.
func (v *View) ID() string { return v.id }

// Phase returns the current gesture phase.
func (v *View) Phase() Phase { return v.phase }

// Direction returns the active resize direction, or zero when not resizing.
func (v *View) Direction() Direction { return v.dir }

func (v *View) placed() (state.WindowState, geom.Rect, bool) {
	ws, ok := v.mgr.Window(v.id)
	if !ok {
		return ws, geom.Rect{}, false
	}
	r, ok := ws.Placement()
	return ws, r, ok
}

// BeginDrag starts a title-bar drag. Refused while maximized, while another
// gesture is active, or when the window has no placement.
func (v *View) BeginDrag(pointer geom.Point) bool {
	if v.phase != PhaseIdle {
		return false
	}
	ws, r, ok := v.placed()
	if !ok || ws.IsMaximized {
		return false
	}
	v.dragOffset = pointer.Sub(r.Origin())
	v.phase = PhaseDragging
	v.mgr.BringToFront(v.id)
	return true
}

// BeginResize starts a resize from the handle for dir.
func (v *View) BeginResize(pointer geom.Point, dir Direction) bool {
	if v.phase != PhaseIdle || dir == 0 {
		return false
	}
	ws, r, ok := v.placed()
	if !ok || ws.IsMaximized {
		return false
	}
	v.phase = PhaseResizing
	v.dir = dir
	v.startPointer = pointer
	v.startPos = r.Origin()
	v.startSize = r.Size()
	v.draft = r.Origin()
	v.mgr.BringToFront(v.id)
	return true
}

// Move handles a pointer move anywhere on the desktop. desktop is the live
// size of the desktop surface. For drags it returns true when a flush must
// be scheduled for the coalesced position.
func (v *View) Move(pointer geom.Point, desktop geom.Size) bool {
	switch v.phase {
	case PhaseDragging:
		return v.drag(pointer, desktop)
	case PhaseResizing:
		v.resize(pointer, desktop)
	}
	return false
}

func (v *View) drag(pointer geom.Point, desktop geom.Size) bool {
	ws, r, ok := v.placed()
	if !ok || ws.IsMaximized {
		return false
	}
	return v.pending.Set(ClampOrigin(pointer.Sub(v.dragOffset), r.Size(), desktop))
}

// ClampOrigin keeps a window of size s inside the desktop and above the
// taskbar. The lower bound wins when the window is larger than the desktop.
func ClampOrigin(p geom.Point, s geom.Size, desktop geom.Size) geom.Point {
	return geom.Point{
		X: geom.Clamp(p.X, 0, desktop.Width-s.Width),
		Y: geom.Clamp(p.Y, 0, desktop.Height-s.Height-wm.TaskbarHeight),
	}
}

// ClampSize caps s so a window at p does not run past the desktop's right
// edge or into the taskbar, then applies the size floor.
func ClampSize(p geom.Point, s geom.Size, desktop geom.Size) geom.Size {
	return geom.Size{
		Width:  max(wm.MinWidth, min(s.Width, desktop.Width-p.X)),
		Height: max(wm.MinHeight, min(s.Height, desktop.Height-p.Y-wm.TaskbarHeight)),
	}
}

func (v *View) resize(pointer geom.Point, desktop geom.Size) {
	ws, ok := v.mgr.Window(v.id)
	if !ok || ws.IsMaximized {
		return
	}
	delta := pointer.Sub(v.startPointer)
	r := ResizeRect(v.dir, geom.RectOf(v.startPos, v.startSize), delta, desktop)

	if v.dir.Has(West) {
		v.draft = r.Origin()
	} else {
		v.mgr.UpdatePosition(v.id, r.Origin())
	}
	v.mgr.UpdateSize(v.id, r.Size())
}

// ResizeRect applies one pointer delta to the geometry captured at
// pointer-down. Each edge of dir is solved independently:
//
//   - East grows the width up to the desktop's right edge.
//   - South grows the height down to the taskbar.
//   - West pivots on the right edge; the left edge stops at 0 and the width
//     at MinWidth, pinning the left edge when the floor is hit.
//   - North mirrors West on the vertical axis with MinHeight.
//
// The returned size is always at least MinWidth x MinHeight.
func ResizeRect(dir Direction, start geom.Rect, delta geom.Point, desktop geom.Size) geom.Rect {
	out := start

	if dir.Has(West) {
		pivot := start.Right()
		left := max(0, start.X+delta.X)
		if w := pivot - left; w >= wm.MinWidth {
			out.X, out.Width = left, w
		} else {
			out.X, out.Width = pivot-wm.MinWidth, wm.MinWidth
		}
	}
	if dir.Has(East) {
		out.Width = min(start.Width+delta.X, desktop.Width-start.X)
	}
	if dir.Has(South) {
		out.Height = min(start.Height+delta.Y, desktop.Height-start.Y-wm.TaskbarHeight)
	}
	if dir.Has(North) {
		pivot := start.Bottom()
		top := max(0, start.Y+delta.Y)
		if h := pivot - top; h >= wm.MinHeight {
			out.Y, out.Height = top, h
		} else {
			out.Y, out.Height = pivot-wm.MinHeight, wm.MinHeight
		}
	}

	out.Width = max(wm.MinWidth, out.Width)
	out.Height = max(wm.MinHeight, out.Height)
	return out
}

// Flush applies the pending drag position, if any. Call once per frame.
func (v *View) Flush() bool {
	p, ok := v.pending.Take()
	if !ok {
		return false
	}
	v.mgr.UpdatePosition(v.id, p)
	return true
}

// End handles pointer-up. A pending drag position is applied; a west-edge
// resize commits its draft origin when it moved.
func (v *View) End() {
	switch v.phase {
	case PhaseDragging:
		v.Flush()
	case PhaseResizing:
		if v.dir.Has(West) {
			if ws, ok := v.mgr.Window(v.id); ok && (ws.Position == nil || *ws.Position != v.draft) {
				v.mgr.UpdatePosition(v.id, v.draft)
			}
		}
	}
	v.reset()
}

// Detach abandons any gesture without writing to the manager. Used when the
// window goes away mid-gesture.
func (v *View) Detach() {
	v.pending.Drop()
	v.reset()
}

func (v *View) reset() {
	v.phase = PhaseIdle
	v.dir = 0
	v.dragOffset = geom.Point{}
	v.startPointer = geom.Point{}
	v.startPos = geom.Point{}
	v.startSize = geom.Size{}
	v.draft = geom.Point{}
}

// DoubleClickTitle toggles maximize.
func (v *View) DoubleClickTitle() {
	v.mgr.ToggleMaximize(v.id)
}

// Bounds is the geometry the window renders at. Minimized and unplaced
// windows are not rendered. A maximized window fills the desktop above the
// taskbar reservation whatever its stored geometry; a west-edge resize in
// progress renders at its draft origin.
func (v *View) Bounds(desktop geom.Size) (geom.Rect, bool) {
	ws, ok := v.mgr.Window(v.id)
	if !ok || ws.IsMinimized {
		return geom.Rect{}, false
	}
	if ws.IsMaximized {
		return geom.Rect{
			Width:  desktop.Width,
			Height: desktop.Height - wm.MaximizedTaskbarReserve,
		}, true
	}
	r, ok := ws.Placement()
	if !ok {
		return geom.Rect{}, false
	}
	if v.phase == PhaseResizing && v.dir.Has(West) {
		r.X, r.Y = v.draft.X, v.draft.Y
	}
	return r, true
}
