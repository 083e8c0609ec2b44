// Package logs is the System Logs program. It shows log messages pushed over
// the feed.
package logs

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/workbench/internal/registry"
)

const maxEntries = 500

type entry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type buffer struct {
	mu      sync.Mutex
	entries []entry
}

func (b *buffer) add(msg json.RawMessage) {
	var frame struct {
		Data entry `json:"data"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil || frame.Data.Message == "" {
		return
	}
	if frame.Data.Level == "" {
		frame.Data.Level = "info"
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, frame.Data)
	if len(b.entries) > maxEntries {
		b.entries = b.entries[len(b.entries)-maxEntries:]
	}
}

func (b *buffer) render(ctx registry.RenderContext) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return []string{"SYSTEM LOGS", "", "(no messages)"}
	}
	lines := []string{"SYSTEM LOGS", ""}
	for _, e := range b.entries {
		lines = append(lines, fmt.Sprintf("%s %-5s %s", e.Timestamp.Format("15:04:05"), strings.ToUpper(e.Level), e.Message))
	}
	if ctx.Height > 2 && len(lines) > ctx.Height {
		lines = append(lines[:2], lines[len(lines)-(ctx.Height-2):]...)
	}
	return lines
}

var shared buffer

func init() {
	registry.Register(registry.Program{
		ID:      "logs",
		Title:   "System Logs",
		Icon:    "!",
		Content: shared.render,
		SocketEvents: func(f registry.Feed) func() {
			return f.Subscribe("log", shared.add)
		},
	})
}
