package gesture

import (
	"fmt"
	"strings"
)

// Phase represents the current phase of a window's pointer gesture
type Phase int

const (
	// PhaseIdle means no gesture is in progress
	PhaseIdle Phase = iota
	// PhaseDragging means the title bar is held and the window follows the pointer
	PhaseDragging
	// PhaseResizing means a resize handle is held
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Direction is the set of edges a resize moves. Corners combine two edges.
type Direction uint8

const (
	North Direction = 1 << iota
	South
	East
	West
)

// ParseDirection accepts the compass names n, s, e, w, ne, nw, se and sw.
func ParseDirection(s string) (Direction, error) {
	var d Direction
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 2 {
		return 0, fmt.Errorf("invalid resize direction %q", s)
	}
	for _, r := range s {
		var edge Direction
		switch r {
		case 'n':
			edge = North
		case 's':
			edge = South
		case 'e':
			edge = East
		case 'w':
			edge = West
		default:
			return 0, fmt.Errorf("invalid resize direction %q", s)
		}
		if d&edge != 0 {
			return 0, fmt.Errorf("invalid resize direction %q", s)
		}
		d |= edge
	}
	if d&(North|South) == North|South || d&(East|West) == East|West {
		return 0, fmt.Errorf("invalid resize direction %q", s)
	}
	return d, nil
}

// Has reports whether d includes every edge in edge.
func (d Direction) Has(edge Direction) bool { return d&edge == edge && edge != 0 }

// String returns the compass name, vertical edge first ("sw", "ne").
func (d Direction) String() string {
	var b strings.Builder
	if d.Has(North) {
		b.WriteByte('n')
	}
	if d.Has(South) {
		b.WriteByte('s')
	}
	if d.Has(East) {
		b.WriteByte('e')
	}
	if d.Has(West) {
		b.WriteByte('w')
	}
	return b.String()
}

// Coalescer keeps at most one pending value. Set replaces whatever is
// pending, so only the latest value survives until the next Take.
type Coalescer[T any] struct {
	pending T
	has     bool
}

// Set stores v and reports whether this is the first value since the last
// Take, i.e. whether the caller must schedule a flush.
func (c *Coalescer[T]) Set(v T) bool {
	first := !c.has
	c.pending = v
	c.has = true
	return first
}

// Take removes and returns the pending value.
func (c *Coalescer[T]) Take() (T, bool) {
	var zero T
	if !c.has {
		return zero, false
	}
	v := c.pending
	c.pending = zero
	c.has = false
	return v, true
}

// Pending reports whether a value is waiting.
func (c *Coalescer[T]) Pending() bool { return c.has }

// Drop discards the pending value.
func (c *Coalescer[T]) Drop() { c.Take() }
