// Package viewport re-clamps windows whenever the visible desktop area
// changes size.
package viewport

import (
	"sync"

	"github.com/1broseidon/workbench/internal/geom"
)

// Adjuster is implemented by wm.Manager.
type Adjuster interface {
	AdjustWindowPositions(width, height int)
}

// Observer forwards content-size changes to an Adjuster. Sizes may arrive
// from the UI loop (terminal resize, frame toggle) and from the control
// socket, so the last size is guarded.
type Observer struct {
	target Adjuster

	mu   sync.Mutex
	last geom.Size
}

// NewObserver creates an observer with no recorded size.
func NewObserver(target Adjuster) *Observer {
	return &Observer{target: target}
}

// Observe records size and adjusts windows if it differs from the previous
// observation. Non-positive sizes (a collapsed or hidden surface) are
// ignored. Reports whether an adjustment ran.
func (o *Observer) Observe(size geom.Size) bool {
	if size.Width <= 0 || size.Height <= 0 {
		return false
	}
	o.mu.Lock()
	if size == o.last {
		o.mu.Unlock()
		return false
	}
	o.last = size
	o.mu.Unlock()

	o.target.AdjustWindowPositions(size.Width, size.Height)
	return true
}

// Last returns the most recent observed size.
func (o *Observer) Last() (geom.Size, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.last != geom.Size{}
}
