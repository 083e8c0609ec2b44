// Package doodle is a tiny scratch canvas.
package doodle

import (
	"strings"

	"github.com/1broseidon/workbench/internal/registry"
)

func render(ctx registry.RenderContext) []string {
	w, h := max(ctx.Width, 8), max(ctx.Height, 3)
	lines := make([]string, 0, h)
	lines = append(lines, "DOODLE  [pen] [eraser] [clear]")
	for i := 1; i < h; i++ {
		lines = append(lines, strings.Repeat(".", w))
	}
	return lines
}

func init() {
	registry.Register(registry.Program{
		ID:      "doodle",
		Title:   "Doodle",
		Icon:    "~",
		Content: render,
	})
}
