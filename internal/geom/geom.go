// Package geom holds the pixel geometry shared by the window manager and the
// desktop surface.
package geom

// Point is a top-left offset in pixels, relative to the desktop origin.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RectOf builds a Rect from an origin and a size.
func RectOf(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rect's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Right is the x coordinate just past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom is the y coordinate just past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Clamp limits v to [lo, hi]. When hi < lo the lower bound wins, so a
// window wider than its container pins to the container's origin.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
