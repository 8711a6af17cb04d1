package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

const (
	colorText    = lipgloss.Color("#FAFAFA")
	colorFelt    = lipgloss.Color("#1E6B45")
	colorMuted   = lipgloss.Color("#626262")
	colorGold    = lipgloss.Color("#FFD700")
	colorCream   = lipgloss.Color("#FFEAA7")
	colorMint    = lipgloss.Color("#96CEB4")
	colorCoral   = lipgloss.Color("#FF6B6B")
	focusColor   = lipgloss.Color("#04B575")
	unfocusColor = colorMuted
)

var (
	HeaderStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorFelt).Bold(true)

	HandInfoStyle   = lipgloss.NewStyle().Foreground(colorMint).Bold(true)
	DealerInfoStyle = lipgloss.NewStyle().Foreground(colorCream).Bold(true)
	ActionsStyle    = lipgloss.NewStyle().Foreground(colorGold).Bold(true)

	RedCardStyle    = lipgloss.NewStyle().Foreground(colorCoral).Bold(true)
	BlackCardStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	HiddenCardStyle = lipgloss.NewStyle().Foreground(colorMuted)

	SuccessStyle = lipgloss.NewStyle().Foreground(colorMint).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorCoral).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(colorCream).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// cardStyle colours hearts and diamonds red.
func cardStyle(c deck.Card) lipgloss.Style {
	if c.IsRed() {
		return RedCardStyle
	}
	return BlackCardStyle
}

// netStyle picks the log colour for a settled hand.
func netStyle(net game.Chips) lipgloss.Style {
	switch {
	case net > 0:
		return SuccessStyle
	case net < 0:
		return ErrorStyle
	default:
		return WarningStyle
	}
}
