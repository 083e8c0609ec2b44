package desktop

import (
	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/gesture"
	"github.com/1broseidon/workbench/internal/wm"
)

// Icon tiles, in cells.
const (
	iconCols = 12
	iconRows = 4
)

// controls is the title-bar button strip: minimize, maximize, close.
const controls = "[_][□][x]"

// layout maps the terminal grid onto the pixel desktop the window manager
// works in. Each terminal cell covers cell.Width x cell.Height pixels.
type layout struct {
	cols, rows int
	cell       geom.Size
	fullscreen bool
}

// content is the desktop surface in terminal cells: everything inside the
// decorative frame, or the whole terminal in fullscreen.
func (l layout) content() geom.Rect {
	if l.fullscreen {
		return geom.Rect{Width: max(0, l.cols), Height: max(0, l.rows)}
	}
	return geom.Rect{X: 1, Y: 1, Width: max(0, l.cols-2), Height: max(0, l.rows-2)}
}

// desktop is the content size in pixels.
func (l layout) desktop() geom.Size {
	c := l.content()
	return geom.Size{Width: c.Width * l.cell.Width, Height: c.Height * l.cell.Height}
}

func (l layout) taskbarRows() int {
	return (wm.TaskbarHeight + l.cell.Height - 1) / l.cell.Height
}

// taskbarTop is the first taskbar row in content coordinates.
func (l layout) taskbarTop() int {
	return l.content().Height - l.taskbarRows()
}

// local converts terminal coordinates to content coordinates.
func (l layout) local(col, row int) (int, int, bool) {
	c := l.content()
	x, y := col-c.X, row-c.Y
	return x, y, x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

// toPixel maps a terminal cell to the desktop pixel at its top-left corner.
func (l layout) toPixel(col, row int) geom.Point {
	c := l.content()
	return geom.Point{X: (col - c.X) * l.cell.Width, Y: (row - c.Y) * l.cell.Height}
}

// toCells maps a pixel rectangle to the content cells it covers.
func (l layout) toCells(r geom.Rect) geom.Rect {
	x0 := floorDiv(r.X, l.cell.Width)
	y0 := floorDiv(r.Y, l.cell.Height)
	x1 := floorDiv(r.Right(), l.cell.Width)
	y1 := floorDiv(r.Bottom(), l.cell.Height)
	return geom.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// iconRects lays the program icons out on the desktop, in content cells.
func (l layout) iconRects(n, columns int) []geom.Rect {
	d := l.desktop()
	area := geom.Rect{Width: d.Width, Height: d.Height - wm.TaskbarHeight}
	size := geom.Size{Width: iconCols * l.cell.Width, Height: iconRows * l.cell.Height}
	px := geom.GridCells(n, columns, size, area, l.cell.Height)
	out := make([]geom.Rect, len(px))
	for i, r := range px {
		out[i] = l.toCells(r)
	}
	return out
}

type hitKind int

const (
	hitNone hitKind = iota
	hitDesktop
	hitIcon
	hitTitle
	hitMinimize
	hitMaximize
	hitClose
	hitEdge
	hitBody
	hitStart
	hitTaskEntry
	hitMenuItem
)

func (k hitKind) String() string {
	switch k {
	case hitDesktop:
		return "desktop"
	case hitIcon:
		return "icon"
	case hitTitle:
		return "title"
	case hitMinimize:
		return "minimize"
	case hitMaximize:
		return "maximize"
	case hitClose:
		return "close"
	case hitEdge:
		return "edge"
	case hitBody:
		return "body"
	case hitStart:
		return "start"
	case hitTaskEntry:
		return "task"
	case hitMenuItem:
		return "menu"
	default:
		return "none"
	}
}

// hit is what lies under the pointer.
type hit struct {
	kind  hitKind
	id    string
	dir   gesture.Direction
	index int
}

func (h hit) same(o hit) bool {
	return h.kind == o.kind && h.id == o.id && h.index == o.index
}

// windowHit classifies (x, y) against a window drawn at r, all in content
// cells. Resize handles sit on the left, right and bottom edges and both
// bottom corners; the top row is the title bar with its button strip.
func windowHit(id string, r geom.Rect, x, y int) (hit, bool) {
	if x < r.X || y < r.Y || x >= r.Right() || y >= r.Bottom() {
		return hit{}, false
	}
	left, right, bottom := r.X, r.Right()-1, r.Bottom()-1

	if y == r.Y {
		strip := right - len([]rune(controls))
		switch {
		case x >= strip && x < strip+3:
			return hit{kind: hitMinimize, id: id}, true
		case x >= strip+3 && x < strip+6:
			return hit{kind: hitMaximize, id: id}, true
		case x >= strip+6 && x < strip+9:
			return hit{kind: hitClose, id: id}, true
		}
		return hit{kind: hitTitle, id: id}, true
	}

	var dir gesture.Direction
	if y == bottom {
		dir |= gesture.South
	}
	if x == left {
		dir |= gesture.West
	} else if x == right {
		dir |= gesture.East
	}
	if dir != 0 {
		return hit{kind: hitEdge, id: id, dir: dir}, true
	}
	return hit{kind: hitBody, id: id}, true
}
