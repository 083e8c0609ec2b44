package gesture

import (
	"slices"
	"testing"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/state"
	"github.com/1broseidon/workbench/internal/wm"
)

type countingManager struct {
	*wm.Manager
	positions []geom.Point
	sizes     []geom.Size
}

func (c *countingManager) UpdatePosition(id string, p geom.Point) {
	c.positions = append(c.positions, p)
	c.Manager.UpdatePosition(id, p)
}

func (c *countingManager) UpdateSize(id string, s geom.Size) {
	c.sizes = append(c.sizes, s)
	c.Manager.UpdateSize(id, s)
}

var desktop = geom.Size{Width: 800, Height: 600}

func newTestView(t *testing.T, r geom.Rect) (*View, *countingManager) {
	t.Helper()
	m := wm.New(state.NewMemoryStore(state.Empty()))
	m.OpenProgram("doodle")
	m.UpdatePosition("doodle", r.Origin())
	m.UpdateSize("doodle", r.Size())
	cm := &countingManager{Manager: m}
	return NewView("doodle", cm), cm
}

func stored(t *testing.T, cm *countingManager) geom.Rect {
	t.Helper()
	ws, ok := cm.Window("doodle")
	if !ok {
		t.Fatal("doodle window missing")
	}
	r, ok := ws.Placement()
	if !ok {
		t.Fatal("doodle window has no placement")
	}
	return r
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"n", "s", "e", "w", "ne", "nw", "se", "sw", "SW"} {
		d, err := ParseDirection(s)
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", s, err)
		}
		back, err := ParseDirection(d.String())
		if err != nil || back != d {
			t.Fatalf("round trip of %q gave %v, %v", s, back, err)
		}
	}
	for _, s := range []string{"", "ns", "ew", "nn", "x", "nse"} {
		if _, err := ParseDirection(s); err == nil {
			t.Fatalf("ParseDirection(%q) accepted", s)
		}
	}
	d, _ := ParseDirection("sw")
	if !d.Has(South) || !d.Has(West) || d.Has(North) {
		t.Fatalf("sw edges=%v", d)
	}
}

func TestCoalescer_LastWriteWins(t *testing.T) {
	var c Coalescer[int]
	if !c.Set(1) || c.Set(2) || c.Set(3) {
		t.Fatal("only the first set after a take should ask for a flush")
	}

	v, ok := c.Take()
	if !ok || v != 3 {
		t.Fatalf("take=%d,%v, want 3", v, ok)
	}
	if _, ok := c.Take(); ok {
		t.Fatal("second take returned a value")
	}
	if !c.Set(4) {
		t.Fatal("a new flush is needed after a take")
	}
	c.Drop()
	if c.Pending() {
		t.Fatal("drop left a pending value")
	}
}

func TestDrag_FollowsPointerOffset(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})

	if !v.BeginDrag(geom.Point{X: 110, Y: 110}) {
		t.Fatal("drag refused")
	}
	if v.Phase() != PhaseDragging {
		t.Fatalf("phase=%v, want dragging", v.Phase())
	}
	if !v.Move(geom.Point{X: 120, Y: 130}, geom.Size{Width: 1024, Height: 768}) {
		t.Fatal("first move did not ask for a flush")
	}
	if !v.Flush() {
		t.Fatal("flush wrote nothing")
	}

	if got := stored(t, cm).Origin(); got != (geom.Point{X: 110, Y: 120}) {
		t.Fatalf("origin=%v, want 110,120", got)
	}
}

func TestDrag_ClampsIntoDesktopAboveTaskbar(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	if !v.BeginDrag(geom.Point{X: 150, Y: 110}) {
		t.Fatal("drag refused")
	}

	v.Move(geom.Point{X: 5000, Y: 5000}, desktop)
	v.Flush()
	want := geom.Point{X: 400, Y: 600 - 300 - wm.TaskbarHeight}
	if got := stored(t, cm).Origin(); got != want {
		t.Fatalf("origin=%v, want %v", got, want)
	}

	v.Move(geom.Point{X: -5000, Y: -5000}, desktop)
	v.Flush()
	if got := stored(t, cm).Origin(); got != (geom.Point{}) {
		t.Fatalf("origin=%v, want 0,0", got)
	}
}

func TestDrag_CoalescesToOneUpdatePerFlush(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	if !v.BeginDrag(geom.Point{X: 100, Y: 100}) {
		t.Fatal("drag refused")
	}

	if !v.Move(geom.Point{X: 110, Y: 100}, desktop) {
		t.Fatal("first move did not ask for a flush")
	}
	if v.Move(geom.Point{X: 120, Y: 100}, desktop) || v.Move(geom.Point{X: 130, Y: 105}, desktop) {
		t.Fatal("later moves asked for another flush")
	}
	if len(cm.positions) != 0 {
		t.Fatalf("written before the flush: %v", cm.positions)
	}

	v.Flush()
	if want := []geom.Point{{X: 130, Y: 105}}; !slices.Equal(cm.positions, want) {
		t.Fatalf("positions=%v, want %v", cm.positions, want)
	}
	if v.Flush() {
		t.Fatal("empty flush wrote")
	}
}

func TestDrag_EndFlushesPendingPosition(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	if !v.BeginDrag(geom.Point{X: 100, Y: 100}) {
		t.Fatal("drag refused")
	}
	v.Move(geom.Point{X: 140, Y: 160}, desktop)

	v.End()
	if v.Phase() != PhaseIdle {
		t.Fatalf("phase=%v after end", v.Phase())
	}
	if got := stored(t, cm).Origin(); got != (geom.Point{X: 140, Y: 160}) {
		t.Fatalf("origin=%v, want 140,160", got)
	}
}

func TestDetach_DropsPendingWork(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	if !v.BeginDrag(geom.Point{X: 100, Y: 100}) {
		t.Fatal("drag refused")
	}
	v.Move(geom.Point{X: 140, Y: 160}, desktop)

	v.Detach()
	if v.Flush() {
		t.Fatal("flush after detach wrote")
	}
	if len(cm.positions) != 0 {
		t.Fatalf("positions=%v after detach", cm.positions)
	}
	if v.Phase() != PhaseIdle {
		t.Fatalf("phase=%v after detach", v.Phase())
	}
}

func TestBegin_BringsWindowToFront(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	cm.OpenProgram("terminal")

	if !v.BeginResize(geom.Point{X: 300, Y: 200}, South|East) {
		t.Fatal("resize refused")
	}
	states := cm.WindowStates()
	if states["doodle"].ZIndex <= states["terminal"].ZIndex {
		t.Fatalf("doodle z=%d not above terminal z=%d", states["doodle"].ZIndex, states["terminal"].ZIndex)
	}
}

func TestBegin_RefusedWhileMaximizedOrBusy(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100})
	v.DoubleClickTitle()
	if ws, _ := cm.Window("doodle"); !ws.IsMaximized {
		t.Fatal("double click did not maximize")
	}

	if v.BeginDrag(geom.Point{X: 110, Y: 110}) || v.BeginResize(geom.Point{X: 300, Y: 200}, East) {
		t.Fatal("gesture started on a maximized window")
	}
	if v.Phase() != PhaseIdle {
		t.Fatalf("phase=%v, want idle", v.Phase())
	}

	v.DoubleClickTitle()
	if !v.BeginDrag(geom.Point{X: 110, Y: 110}) {
		t.Fatal("drag refused after restore")
	}
	if v.BeginResize(geom.Point{X: 300, Y: 200}, East) {
		t.Fatal("resize started during a drag")
	}
	if v.Phase() != PhaseDragging {
		t.Fatalf("phase=%v, want dragging", v.Phase())
	}
}

func TestResize_EastAndSouthStopAtDesktopEdges(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})
	if !v.BeginResize(geom.Point{X: 400, Y: 300}, South|East) {
		t.Fatal("resize refused")
	}

	v.Move(geom.Point{X: 2000, Y: 2000}, desktop)
	want := geom.Rect{X: 100, Y: 100, Width: 800 - 100, Height: 600 - 100 - wm.TaskbarHeight}
	if got := stored(t, cm); got != want {
		t.Fatalf("rect=%+v, want %+v", got, want)
	}
}

func TestResize_WestHoldsDraftUntilPointerUp(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})
	if !v.BeginResize(geom.Point{X: 100, Y: 200}, West) {
		t.Fatal("resize refused")
	}

	v.Move(geom.Point{X: -150, Y: 200}, desktop)

	r := stored(t, cm)
	if r.Width != 400 {
		t.Fatalf("width=%d, want 400", r.Width)
	}
	if r.X != 100 || len(cm.positions) != 0 {
		t.Fatalf("origin committed mid-gesture: x=%d positions=%v", r.X, cm.positions)
	}

	want := geom.Rect{X: 0, Y: 100, Width: 400, Height: 200}
	if b, ok := v.Bounds(desktop); !ok || b != want {
		t.Fatalf("draft bounds=%+v ok=%v, want %+v", b, ok, want)
	}

	v.End()
	if got := stored(t, cm); got != want {
		t.Fatalf("rect=%+v after end, want %+v", got, want)
	}
	if len(cm.positions) != 1 {
		t.Fatalf("positions=%v, want one commit", cm.positions)
	}
}

func TestResize_WestWithoutMovementCommitsNothing(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 100, Y: 100, Width: 300, Height: 200})
	if !v.BeginResize(geom.Point{X: 100, Y: 200}, South|West) {
		t.Fatal("resize refused")
	}
	v.Move(geom.Point{X: 100, Y: 260}, desktop)
	v.End()
	if len(cm.positions) != 0 {
		t.Fatalf("positions=%v, want none", cm.positions)
	}
	if h := stored(t, cm).Height; h != 260 {
		t.Fatalf("height=%d, want 260", h)
	}
}

func TestResizeRect(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, Width: 300, Height: 300}
	tests := []struct {
		name  string
		dir   Direction
		delta geom.Point
		want  geom.Rect
	}{
		{"west grows to left edge", West, geom.Point{X: -250}, geom.Rect{X: 0, Y: 100, Width: 400, Height: 300}},
		{"west pins at min width", West, geom.Point{X: 250}, geom.Rect{X: 200, Y: 100, Width: 200, Height: 300}},
		{"north grows to top edge", North, geom.Point{Y: -250}, geom.Rect{X: 100, Y: 0, Width: 300, Height: 400}},
		{"north pins at min height", North, geom.Point{Y: 290}, geom.Rect{X: 100, Y: 300, Width: 300, Height: 100}},
		{"east shrinks to floor", East, geom.Point{X: -1000}, geom.Rect{X: 100, Y: 100, Width: 200, Height: 300}},
		{"south shrinks to floor", South, geom.Point{Y: -1000}, geom.Rect{X: 100, Y: 100, Width: 300, Height: 100}},
		{"south west corner", South | West, geom.Point{X: -50, Y: 20}, geom.Rect{X: 50, Y: 100, Width: 350, Height: 320}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResizeRect(tt.dir, start, tt.delta, desktop); got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResizeRect_SizeNeverBelowFloor(t *testing.T) {
	start := geom.Rect{X: 700, Y: 500, Width: 250, Height: 150}
	tiny := geom.Size{Width: 300, Height: 200}
	deltas := []geom.Point{{X: -5000, Y: -5000}, {X: 5000, Y: 5000}, {X: 0, Y: 0}, {X: 123, Y: -77}}
	for _, s := range []string{"n", "s", "e", "w", "ne", "nw", "se", "sw"} {
		dir, err := ParseDirection(s)
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", s, err)
		}
		for _, d := range deltas {
			r := ResizeRect(dir, start, d, tiny)
			if r.Width < wm.MinWidth || r.Height < wm.MinHeight {
				t.Fatalf("%s %v: %dx%d below floor", s, d, r.Width, r.Height)
			}
		}
	}
}

func TestBounds(t *testing.T) {
	v, cm := newTestView(t, geom.Rect{X: 120, Y: 80, Width: 300, Height: 200})

	want := geom.Rect{X: 120, Y: 80, Width: 300, Height: 200}
	if b, ok := v.Bounds(desktop); !ok || b != want {
		t.Fatalf("bounds=%+v ok=%v, want %+v", b, ok, want)
	}

	cm.ToggleMaximize("doodle")
	want = geom.Rect{Width: 800, Height: 600 - wm.MaximizedTaskbarReserve}
	if b, ok := v.Bounds(desktop); !ok || b != want {
		t.Fatalf("maximized bounds=%+v ok=%v, want %+v", b, ok, want)
	}

	cm.ToggleMinimize("doodle")
	if _, ok := v.Bounds(desktop); ok {
		t.Fatal("minimized window has bounds")
	}

	cm.CloseProgram("doodle")
	if _, ok := v.Bounds(desktop); ok {
		t.Fatal("closed window has bounds")
	}
}

func TestClampHelpers(t *testing.T) {
	size := geom.Size{Width: 400, Height: 300}
	if got := ClampOrigin(geom.Point{X: 900, Y: 900}, size, desktop); got != (geom.Point{X: 400, Y: 252}) {
		t.Fatalf("ClampOrigin far=%v", got)
	}
	if got := ClampOrigin(geom.Point{X: 10, Y: 10}, geom.Size{Width: 900, Height: 900}, desktop); got != (geom.Point{}) {
		t.Fatalf("ClampOrigin oversized=%v", got)
	}

	if got := ClampSize(geom.Point{X: 500, Y: 300}, geom.Size{Width: 1000, Height: 1000}, desktop); got != (geom.Size{Width: 300, Height: 252}) {
		t.Fatalf("ClampSize=%v", got)
	}
	if got := ClampSize(geom.Point{}, geom.Size{Width: 1, Height: 1}, desktop); got != (geom.Size{Width: wm.MinWidth, Height: wm.MinHeight}) {
		t.Fatalf("ClampSize floor=%v", got)
	}
}
