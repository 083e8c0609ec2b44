// Package sounds plays the desktop's audio cues. Window open and close cues
// are delivered through wm.Notifier and never block the caller.
package sounds

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cue is a short sequence of terminal bells separated by gaps.
type Cue struct {
	Name  string
	Bells int
	Gap   time.Duration
}

var (
	CueOpen  = Cue{Name: "open", Bells: 1}
	CueClose = Cue{Name: "close", Bells: 2, Gap: 80 * time.Millisecond}
	CueLogin = Cue{Name: "login", Bells: 3, Gap: 60 * time.Millisecond}
)

// Player writes cues to out, usually the controlling terminal.
type Player struct {
	out     io.Writer
	enabled bool
	logger  *zap.Logger

	// mu serializes writes so overlapping cues do not interleave.
	mu sync.Mutex
	wg sync.WaitGroup
}

// NewPlayer creates a player. A disabled player drops every cue.
func NewPlayer(out io.Writer, enabled bool, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{out: out, enabled: enabled, logger: logger}
}

// Play starts c in the background.
func (p *Player) Play(c Cue) {
	if p == nil || !p.enabled || p.out == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Warn("sound cue panic recovered", zap.String("cue", c.Name), zap.Any("panic", r))
			}
		}()
		p.mu.Lock()
		defer p.mu.Unlock()
		for i := 0; i < c.Bells; i++ {
			if i > 0 && c.Gap > 0 {
				time.Sleep(c.Gap)
			}
			if _, err := p.out.Write([]byte("\a")); err != nil {
				p.logger.Debug("sound cue write failed", zap.String("cue", c.Name), zap.Error(err))
				return
			}
		}
	}()
}

// Wait blocks until every started cue finished.
func (p *Player) Wait() { p.wg.Wait() }

func (p *Player) WindowOpened(string) { p.Play(CueOpen) }
func (p *Player) WindowClosed(string) { p.Play(CueClose) }
