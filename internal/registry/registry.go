// Package registry holds the catalog of programs the desktop can open.
// Program packages register themselves from init; the catalog is read-only
// once the desktop starts.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// RenderContext is what a program sees when it draws its window body.
type RenderContext struct {
	// Width and Height of the window body, in terminal cells.
	Width  int
	Height int
	Now    time.Time

	Online    int
	Connected bool
}

// Feed is the subset of the live feed programs may use. Subscribers get the
// whole message frame; the fields besides "type" differ per message.
type Feed interface {
	Subscribe(msgType string, fn func(msg json.RawMessage)) (unsubscribe func())
	Send(msgType string, data any) error
}

// Program describes one openable program.
type Program struct {
	ID    string
	Title string
	// Icon is a short glyph drawn on the desktop icon.
	Icon string
	// Content renders the window body, one string per row.
	Content func(RenderContext) []string
	// SocketEvents, when set, subscribes the program to the live feed and
	// returns the function that undoes it.
	SocketEvents func(Feed) (unsubscribe func())
}

// Registry is a set of programs keyed by id.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]Program
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{programs: make(map[string]Program)}
}

// Register adds p. Ids must be unique and non-empty.
func (r *Registry) Register(p Program) error {
	if p.ID == "" {
		return fmt.Errorf("program ID cannot be empty")
	}
	if p.Content == nil {
		return fmt.Errorf("program %q has no content", p.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.programs[p.ID]; dup {
		return fmt.Errorf("program %q already registered", p.ID)
	}
	r.programs[p.ID] = p
	return nil
}

// Lookup returns the program with id.
func (r *Registry) Lookup(id string) (Program, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	return p, ok
}

// Programs returns every program sorted by id.
func (r *Registry) Programs() []Program {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Program, 0, len(r.programs))
	for _, p := range r.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Subscribe wires every program's SocketEvents to f and returns one function
// that removes them all.
func (r *Registry) Subscribe(f Feed) (unsubscribe func()) {
	var undo []func()
	for _, p := range r.Programs() {
		if p.SocketEvents == nil {
			continue
		}
		if u := p.SocketEvents(f); u != nil {
			undo = append(undo, u)
		}
	}
	return func() {
		for _, u := range undo {
			u()
		}
	}
}

var defaultRegistry = New()

// Default returns the process-wide registry programs register into.
func Default() *Registry { return defaultRegistry }

// Register adds p to the default registry. It panics on a bad or duplicate
// program since registration happens from init.
func Register(p Program) {
	if err := defaultRegistry.Register(p); err != nil {
		panic(err)
	}
}

// Programs returns the default registry's programs sorted by id.
func Programs() []Program { return defaultRegistry.Programs() }

// Lookup finds id in the default registry.
func Lookup(id string) (Program, bool) { return defaultRegistry.Lookup(id) }
