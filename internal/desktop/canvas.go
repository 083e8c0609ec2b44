package desktop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell struct {
	r     rune
	style styleID
}

// canvas is a grid of styled terminal cells. within returns a clipped view
// that shares the same cells, so drawing code can work in local coordinates.
type canvas struct {
	w, h  int
	cells []cell

	ox, oy       int
	clipW, clipH int
}

func newCanvas(w, h int, fill styleID) *canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &canvas{w: w, h: h, cells: make([]cell, w*h), clipW: w, clipH: h}
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', style: fill}
	}
	return c
}

func (c *canvas) within(x, y, w, h int) *canvas {
	sub := *c
	sub.ox, sub.oy = c.ox+x, c.oy+y
	sub.clipW = max(0, min(w, c.clipW-x))
	sub.clipH = max(0, min(h, c.clipH-y))
	return &sub
}

func (c *canvas) set(x, y int, r rune, st styleID) {
	if x < 0 || y < 0 || x >= c.clipW || y >= c.clipH {
		return
	}
	ax, ay := c.ox+x, c.oy+y
	if ax < 0 || ay < 0 || ax >= c.w || ay >= c.h {
		return
	}
	c.cells[ay*c.w+ax] = cell{r: r, style: st}
}

// text writes s from (x, y), stopping before column limit.
func (c *canvas) text(x, y int, s string, st styleID, limit int) int {
	for _, r := range s {
		if x >= limit {
			break
		}
		c.set(x, y, r, st)
		x++
	}
	return x
}

func (c *canvas) fill(x, y, w, h int, r rune, st styleID) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.set(xx, yy, r, st)
		}
	}
}

func (c *canvas) hline(x, y, w int, r rune, st styleID) {
	for xx := x; xx < x+w; xx++ {
		c.set(xx, y, r, st)
	}
}

type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	singleBox = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	doubleBox = boxRunes{'═', '║', '╔', '╗', '╚', '╝'}
)

// box draws the border of a w x h rectangle.
func (c *canvas) box(x, y, w, h int, b boxRunes, st styleID) {
	if w < 2 || h < 2 {
		return
	}
	x2, y2 := x+w-1, y+h-1
	for xx := x + 1; xx < x2; xx++ {
		c.set(xx, y, b.h, st)
		c.set(xx, y2, b.h, st)
	}
	for yy := y + 1; yy < y2; yy++ {
		c.set(x, yy, b.v, st)
		c.set(x2, yy, b.v, st)
	}
	c.set(x, y, b.tl, st)
	c.set(x2, y, b.tr, st)
	c.set(x, y2, b.bl, st)
	c.set(x2, y2, b.br, st)
}

// plain returns row y without styling.
func (c *canvas) plain(y int) string {
	if y < 0 || y >= c.h {
		return ""
	}
	row := c.cells[y*c.w : (y+1)*c.w]
	var b strings.Builder
	for _, cl := range row {
		b.WriteRune(cl.r)
	}
	return b.String()
}

// render joins runs of equally styled cells and styles each run once.
func (c *canvas) render(styles []lipgloss.Style) string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := c.cells[y*c.w : (y+1)*c.w]
		for i := 0; i < len(row); {
			st := row[i].style
			run.Reset()
			for i < len(row) && row[i].style == st {
				run.WriteRune(row[i].r)
				i++
			}
			b.WriteString(styles[st].Render(run.String()))
		}
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with '…'.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func center(s string, w int) int {
	n := len([]rune(s))
	if n >= w {
		return 0
	}
	return (w - n) / 2
}
