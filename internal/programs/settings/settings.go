// Package settings shows session and connection details, plus the linked
// accounts the server reports.
package settings

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/1broseidon/workbench/internal/registry"
)

type account struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	Verified bool   `json:"verified"`
}

type panel struct {
	mu       sync.Mutex
	accounts []account
	lastErr  string
}

func (p *panel) applyAccounts(msg json.RawMessage) {
	var frame struct {
		Accounts []account `json:"accounts"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil {
		return
	}
	p.mu.Lock()
	p.accounts = frame.Accounts
	p.mu.Unlock()
}

func (p *panel) applyError(msg json.RawMessage) {
	var frame struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil {
		return
	}
	p.mu.Lock()
	p.lastErr = frame.Message
	p.mu.Unlock()
}

func (p *panel) render(ctx registry.RenderContext) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := "offline"
	if ctx.Connected {
		status = "online"
	}
	lines := []string{
		"SETTINGS",
		"",
		"Connection: " + status,
		fmt.Sprintf("Users online: %d", ctx.Online),
		"",
		"Linked accounts:",
	}
	if len(p.accounts) == 0 {
		lines = append(lines, "  (none)")
	}
	for _, a := range p.accounts {
		mark := " "
		if a.Verified {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf(" %s %-10s %s", mark, a.Platform, a.Username))
	}
	if p.lastErr != "" {
		lines = append(lines, "", "error: "+p.lastErr)
	}
	return lines
}

var shared panel

func init() {
	registry.Register(registry.Program{
		ID:      "settings",
		Title:   "Settings",
		Icon:    "*",
		Content: shared.render,
		SocketEvents: func(f registry.Feed) func() {
			a := f.Subscribe("accounts-update", shared.applyAccounts)
			e := f.Subscribe("connect-error", shared.applyError)
			_ = f.Send("get-connected-accounts", struct{}{})
			return func() { a(); e() }
		},
	})
}
