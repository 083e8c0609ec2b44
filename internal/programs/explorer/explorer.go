// Package explorer is the Token Explorer: a holder list fed by
// holder-search-results messages.
package explorer

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/1broseidon/workbench/internal/registry"
)

type holder struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type results struct {
	mu      sync.Mutex
	holders []holder
	total   int
	err     string
}

func (r *results) apply(msg json.RawMessage) {
	var frame struct {
		Data struct {
			Success bool     `json:"success"`
			Holders []holder `json:"holders"`
			Total   int      `json:"total"`
			Error   string   `json:"error"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg, &frame); err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !frame.Data.Success {
		r.err = frame.Data.Error
		return
	}
	r.holders, r.total, r.err = frame.Data.Holders, frame.Data.Total, ""
}

func (r *results) render(registry.RenderContext) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := []string{fmt.Sprintf("HOLDERS (%d)", r.total), ""}
	if r.err != "" {
		lines = append(lines, "search failed: "+r.err)
	}
	for i, h := range r.holders {
		lines = append(lines, fmt.Sprintf("%3d  %-42s %s", i+1, h.Address, h.Balance))
	}
	return lines
}

var shared results

// searchParams mirrors the request the explorer sends on connect.
type searchParams struct {
	Query   string `json:"query"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
	SortBy  string `json:"sortBy"`
	SortDir string `json:"sortDir"`
}

func init() {
	registry.Register(registry.Program{
		ID:      "explorer",
		Title:   "Token Explorer",
		Icon:    "$",
		Content: shared.render,
		SocketEvents: func(f registry.Feed) func() {
			unsubscribe := f.Subscribe("holder-search-results", shared.apply)
			_ = f.Send("search-holders", searchParams{Query: "*", Limit: 24, SortBy: "balance", SortDir: "DESC"})
			return unsubscribe
		},
	})
}
