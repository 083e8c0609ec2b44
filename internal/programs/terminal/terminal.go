// Package terminal is the shared terminal program. Commands typed by any
// connected user arrive over the feed as terminal-update messages.
package terminal

import (
	"encoding/json"
	"sync"

	"github.com/1broseidon/workbench/internal/registry"
)

const maxCommands = 200

type command struct {
	ID        string `json:"id"`
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type history struct {
	mu       sync.Mutex
	commands []command
}

func (h *history) apply(msg json.RawMessage) {
	var update struct {
		Command command `json:"command"`
	}
	if err := json.Unmarshal(msg, &update); err != nil || update.Command.ID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.commands {
		if h.commands[i].ID == update.Command.ID {
			h.commands[i] = update.Command
			return
		}
	}
	h.commands = append(h.commands, update.Command)
	if len(h.commands) > maxCommands {
		h.commands = h.commands[len(h.commands)-maxCommands:]
	}
}

func (h *history) render(ctx registry.RenderContext) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var lines []string
	for _, c := range h.commands {
		lines = append(lines, "> "+c.Input)
		if c.Output != "" {
			lines = append(lines, c.Output)
		}
	}
	// The prompt shows once the last command has been answered.
	if n := len(h.commands); n == 0 || h.commands[n-1].Output != "" {
		lines = append(lines, "> _")
	}
	if ctx.Height > 0 && len(lines) > ctx.Height {
		lines = lines[len(lines)-ctx.Height:]
	}
	return lines
}

var shared history

func init() {
	registry.Register(registry.Program{
		ID:      "terminal",
		Title:   "Terminal",
		Icon:    ">_",
		Content: shared.render,
		SocketEvents: func(f registry.Feed) func() {
			return f.Subscribe("terminal-update", shared.apply)
		},
	})
}
