package desktop

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const sessionTimeout = 2 * time.Minute

func (m *Model) checkSession() tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		ok, err := s.Check(ctx)
		return sessionMsg{ok: ok, err: err}
	}
}

// login runs the sign-in flow off the UI loop. Signing may wait on the
// user, hence the long timeout.
func (m *Model) login() tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, sessionTimeout)
		defer cancel()
		return loginMsg{err: s.Login(ctx)}
	}
}

// logout locks the desktop at once and tells the server in the background.
func (m *Model) logout() tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.menuOpen = false
	m.gate = gateLocked
	m.stopFeed()
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return logoutMsg{err: s.Logout(ctx)}
	}
}

func (m *Model) openGate() {
	m.gate = gateOpen
	m.startFeed()
}

func (m *Model) startFeed() {
	if m.feed == nil || m.feedCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.feedCancel = cancel
	go m.feed.Run(ctx)
}

func (m *Model) stopFeed() {
	if m.feedCancel != nil {
		m.feedCancel()
		m.feedCancel = nil
	}
}

func (m *Model) renderLogin(c *canvas) {
	c.fill(0, 0, m.cols, m.rows, ' ', stLogin)

	type line struct {
		text  string
		style styleID
	}
	lines := []line{
		{"ONCHAIN COMPUTER", stBrand},
		{"", stLogin},
		{"Sign in with Ethereum to continue.", stLogin},
		{"", stLogin},
	}
	if m.session != nil {
		lines = append(lines, line{"wallet " + m.session.Address(), stLogin})
	}

	var button string
	switch m.gate {
	case gateChecking:
		button = "  Checking session...  "
	case gateSigning:
		button = "  Waiting for signature...  "
	default:
		button = "[ Connect Wallet ]  press enter"
	}

	boxW := 44
	boxH := len(lines) + 6
	x := max(0, (m.cols-boxW)/2)
	y := max(0, (m.rows-boxH)/2)
	c.box(x, y, boxW, boxH, doubleBox, stFrame)

	inner := boxW - 2
	row := y + 1
	for _, l := range lines {
		t := truncate(l.text, inner)
		c.text(x+1+center(t, inner), row, t, l.style, x+boxW-1)
		row++
	}
	row++
	b := truncate(button, inner)
	c.text(x+1+center(b, inner), row, b, stLoginButton, x+boxW-1)
	row += 2
	if m.loginErr != "" {
		e := truncate(m.loginErr, inner)
		c.text(x+1+center(e, inner), row, e, stError, x+boxW-1)
	}
}
