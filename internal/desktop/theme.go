package desktop

import "github.com/charmbracelet/lipgloss"

type styleID uint8

const (
	stDesktop styleID = iota
	stFrame
	stBrand
	stQuip
	stIcon
	stIconLabel
	stBorder
	stBorderActive
	stTitle
	stTitleActive
	stButton
	stBody
	stTaskbar
	stStart
	stEntry
	stEntryMinimized
	stOnline
	stOffline
	stClock
	stMenu
	stMenuHeader
	stMenuDanger
	stLogin
	stLoginButton
	stError
	styleCount
)

const (
	colorBlue     = lipgloss.Color("#0055aa")
	colorDarkBlue = lipgloss.Color("#003366")
	colorLight    = lipgloss.Color("#0077cc")
	colorWhite    = lipgloss.Color("#ffffff")
	colorOrange   = lipgloss.Color("#ff8800")
	colorFrame    = lipgloss.Color("#2c3e50")
	colorGrey     = lipgloss.Color("#aaaaaa")
	colorGreen    = lipgloss.Color("#33ff66")
	colorRed      = lipgloss.Color("#cc2222")
)

func defaultStyles() []lipgloss.Style {
	s := make([]lipgloss.Style, styleCount)
	base := lipgloss.NewStyle()

	s[stDesktop] = base.Foreground(colorWhite).Background(colorBlue)
	s[stFrame] = base.Foreground(colorGrey).Background(colorFrame)
	s[stBrand] = base.Bold(true).Foreground(colorOrange).Background(colorFrame)
	s[stQuip] = base.Italic(true).Foreground(colorWhite).Background(colorFrame)
	s[stIcon] = base.Bold(true).Foreground(colorBlue).Background(colorWhite)
	s[stIconLabel] = base.Foreground(colorWhite).Background(colorBlue)
	s[stBorder] = base.Foreground(colorGrey).Background(colorBlue)
	s[stBorderActive] = base.Foreground(colorWhite).Background(colorBlue)
	s[stTitle] = base.Foreground(colorGrey).Background(colorDarkBlue)
	s[stTitleActive] = base.Bold(true).Foreground(colorBlue).Background(colorWhite)
	s[stButton] = base.Bold(true).Foreground(colorOrange).Background(colorDarkBlue)
	s[stBody] = base.Foreground(colorWhite).Background(colorDarkBlue)
	s[stTaskbar] = base.Foreground(colorWhite).Background(colorBlue)
	s[stStart] = base.Bold(true).Foreground(colorBlue).Background(colorWhite)
	s[stEntry] = base.Bold(true).Foreground(colorBlue).Background(colorWhite)
	s[stEntryMinimized] = base.Foreground(colorWhite).Background(colorDarkBlue)
	s[stOnline] = base.Bold(true).Foreground(colorGreen).Background(colorBlue)
	s[stOffline] = base.Foreground(colorGrey).Background(colorBlue)
	s[stClock] = base.Bold(true).Foreground(colorWhite).Background(colorBlue)
	s[stMenu] = base.Foreground(colorWhite).Background(colorBlue)
	s[stMenuHeader] = base.Bold(true).Foreground(colorWhite).Background(colorLight)
	s[stMenuDanger] = base.Bold(true).Foreground(colorRed).Background(colorWhite)
	s[stLogin] = base.Foreground(colorWhite).Background(colorFrame)
	s[stLoginButton] = base.Bold(true).Foreground(colorBlue).Background(colorWhite)
	s[stError] = base.Bold(true).Foreground(colorRed).Background(colorFrame)
	return s
}
