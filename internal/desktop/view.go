package desktop

import (
	"fmt"

	"github.com/1broseidon/workbench/internal/geom"
	"github.com/1broseidon/workbench/internal/registry"
)

const (
	brand     = " ONCHAIN COMPUTER "
	menuWidth = 28
	// Taskbar entries are capped so a few open programs still fit.
	maxEntryWidth = 18
)

// placedWindow is a visible window in content cells.
type placedWindow struct {
	id    string
	title string
	rect  geom.Rect
}

// visibleWindows returns the drawn windows bottom to top.
func (m *Model) visibleWindows(l layout) []placedWindow {
	d := l.desktop()
	var out []placedWindow
	for _, ws := range m.mgr.Snapshot().ByZIndex() {
		v := m.views[ws.ID]
		if v == nil {
			continue
		}
		r, ok := v.Bounds(d)
		if !ok {
			continue
		}
		title := ws.ID
		if p, ok := m.byID[ws.ID]; ok {
			title = p.Title
		}
		out = append(out, placedWindow{id: ws.ID, title: title, rect: l.toCells(r)})
	}
	return out
}

// segment is one clickable or decorative run of the taskbar's middle row.
type segment struct {
	kind  hitKind
	id    string
	x     int
	label string
	style styleID
}

func (s segment) width() int { return len([]rune(s.label)) }

func (m *Model) taskbarSegments(width int) []segment {
	status := segment{label: " ○ offline ", style: stOffline}
	if m.feed != nil && m.feed.Connected() {
		status = segment{label: fmt.Sprintf(" ● %d online ", m.feed.Online()), style: stOnline}
	}
	clock := segment{label: " " + m.clock.Format("15:04:05") + " ", style: stClock}
	clock.x = width - clock.width() - 1
	status.x = clock.x - status.width() - 1

	segs := []segment{{kind: hitStart, x: 1, label: " Workbench ", style: stStart}}
	x := 1 + segs[0].width() + 1
	snap := m.mgr.Snapshot()
	for _, p := range m.programs {
		ws, ok := snap.WindowStates[p.ID]
		if !ok {
			continue
		}
		label := truncate(" "+p.Icon+" "+p.Title+" ", maxEntryWidth)
		if x+len([]rune(label)) >= status.x {
			break
		}
		style := stEntry
		if ws.IsMinimized {
			style = stEntryMinimized
		}
		segs = append(segs, segment{kind: hitTaskEntry, id: p.ID, x: x, label: label, style: style})
		x += len([]rune(label)) + 1
	}
	if status.x > x {
		segs = append(segs, status)
	}
	if clock.x > x {
		segs = append(segs, clock)
	}
	return segs
}

// menuRect is the start menu's position in content cells.
func (m *Model) menuRect(l layout) geom.Rect {
	h := len(m.menuEntries()) + 4
	return geom.Rect{X: 0, Y: l.taskbarTop() - h, Width: menuWidth, Height: h}
}

// hitTest finds what is under the terminal cell (col, row), topmost first:
// start menu, taskbar, windows, icons.
func (m *Model) hitTest(col, row int) hit {
	l := m.layout()
	x, y, ok := l.local(col, row)
	if !ok {
		return hit{}
	}

	if m.menuOpen {
		r := m.menuRect(l)
		if r.Contains(geom.Point{X: x, Y: y}) {
			// Border, header and divider rows are inert.
			if i := y - r.Y - 3; i >= 0 && i < len(m.menuEntries()) && x > r.X && x < r.Right()-1 {
				return hit{kind: hitMenuItem, index: i}
			}
			return hit{kind: hitNone}
		}
	}

	if top := l.taskbarTop(); y >= top {
		if y == top+1 {
			for _, s := range m.taskbarSegments(l.content().Width) {
				if s.kind != hitNone && x >= s.x && x < s.x+s.width() {
					return hit{kind: s.kind, id: s.id}
				}
			}
		}
		return hit{kind: hitNone}
	}

	windows := m.visibleWindows(l)
	for i := len(windows) - 1; i >= 0; i-- {
		if h, ok := windowHit(windows[i].id, windows[i].rect, x, y); ok {
			return h
		}
	}

	for i, r := range l.iconRects(len(m.programs), m.iconColumns) {
		if r.Contains(geom.Point{X: x, Y: y}) {
			return hit{kind: hitIcon, id: m.programs[i].ID}
		}
	}
	return hit{kind: hitDesktop}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return ""
	}
	c := m.draw()
	return c.render(m.styles)
}

func (m *Model) draw() *canvas {
	c := newCanvas(m.cols, m.rows, stDesktop)
	if m.gate != gateOpen {
		m.renderLogin(c)
		return c
	}

	l := m.layout()
	if !l.fullscreen {
		m.drawFrame(c)
	}
	area := l.content()
	content := c.within(area.X, area.Y, area.Width, area.Height)

	m.drawIcons(content, l)
	windows := m.visibleWindows(l)
	for i, w := range windows {
		m.drawWindow(content, w, i == len(windows)-1)
	}
	m.drawTaskbar(content, l)
	if m.menuOpen {
		m.drawMenu(content, l)
	}
	return c
}

func (m *Model) drawFrame(c *canvas) {
	c.fill(0, 0, m.cols, m.rows, ' ', stFrame)
	c.box(0, 0, m.cols, m.rows, doubleBox, stFrame)
	b := truncate(brand, m.cols-4)
	c.text(center(b, m.cols), 0, b, stBrand, m.cols-1)
	q := truncate(" "+m.quip+" ", m.cols/2)
	c.text(2, m.rows-1, q, stQuip, m.cols-1)
	hint := " F11 fullscreen "
	if len(q)+len(hint)+6 < m.cols {
		c.text(m.cols-len(hint)-2, m.rows-1, hint, stFrame, m.cols-1)
	}
}

func (m *Model) drawIcons(c *canvas, l layout) {
	for i, r := range l.iconRects(len(m.programs), m.iconColumns) {
		p := m.programs[i]
		glyph := truncate(p.Icon, 4)
		gx := r.X + center(" "+glyph+" ", r.Width)
		c.text(gx, r.Y, " "+glyph+" ", stIcon, r.Right())
		label := truncate(p.Title, r.Width)
		c.text(r.X+center(label, r.Width), r.Y+2, label, stIconLabel, r.Right())
	}
}

func (m *Model) drawWindow(c *canvas, w placedWindow, focused bool) {
	r := w.rect
	if r.Width < 2 || r.Height < 2 {
		return
	}
	border, title := stBorder, stTitle
	if focused {
		border, title = stBorderActive, stTitleActive
	}

	c.fill(r.X, r.Y, r.Width, r.Height, ' ', stBody)
	c.box(r.X, r.Y, r.Width, r.Height, singleBox, border)

	c.hline(r.X+1, r.Y, r.Width-2, ' ', title)
	strip := r.Right() - 1 - len([]rune(controls))
	t := truncate(" "+w.title+" ", strip-r.X-1)
	c.text(r.X+1, r.Y, t, title, strip)
	c.text(strip, r.Y, controls, stButton, r.Right()-1)

	p, ok := m.byID[w.id]
	if !ok || p.Content == nil {
		return
	}
	body := geom.Rect{X: r.X + 1, Y: r.Y + 1, Width: r.Width - 2, Height: r.Height - 2}
	ctx := registry.RenderContext{Width: body.Width, Height: body.Height, Now: m.clock}
	if m.feed != nil {
		ctx.Online, ctx.Connected = m.feed.Online(), m.feed.Connected()
	}
	for i, line := range p.Content(ctx) {
		if i >= body.Height {
			break
		}
		c.text(body.X, body.Y+i, truncate(line, body.Width), stBody, body.Right())
	}
}

func (m *Model) drawTaskbar(c *canvas, l layout) {
	top := l.taskbarTop()
	width := l.content().Width
	c.fill(0, top, width, l.taskbarRows(), ' ', stTaskbar)
	c.hline(0, top, width, '─', stTaskbar)
	for _, s := range m.taskbarSegments(width) {
		c.text(s.x, top+1, s.label, s.style, width)
	}
}

func (m *Model) drawMenu(c *canvas, l layout) {
	r := m.menuRect(l)
	c.fill(r.X, r.Y, r.Width, r.Height, ' ', stMenu)
	c.box(r.X, r.Y, r.Width, r.Height, singleBox, stMenu)

	header := "Not Connected"
	if m.session != nil {
		header = shortAddress(m.session.Address())
	}
	c.hline(r.X+1, r.Y+1, r.Width-2, ' ', stMenuHeader)
	c.text(r.X+2, r.Y+1, truncate(header, r.Width-4), stMenuHeader, r.Right()-1)
	c.hline(r.X+1, r.Y+2, r.Width-2, '─', stMenu)

	for i, e := range m.menuEntries() {
		style := stMenu
		if e.logout {
			style = stMenuDanger
			c.hline(r.X+1, r.Y+3+i, r.Width-2, ' ', style)
		}
		c.text(r.X+2, r.Y+3+i, truncate(e.label, r.Width-4), style, r.Right()-1)
	}
}

func shortAddress(a string) string {
	if len(a) <= 12 {
		return a
	}
	return a[:6] + "..." + a[len(a)-4:]
}
