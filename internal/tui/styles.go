package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the TUI styling definitions
type Styles struct {
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantText  lipgloss.Style
	SystemText     lipgloss.Style
	StatusBar      lipgloss.Style
	StatusOK       lipgloss.Style
	StatusError    lipgloss.Style
	InputBorder    lipgloss.Style
	Muted          lipgloss.Style
	WhiteCursor    lipgloss.Style
}

// DefaultStyles creates the default style set using the default renderer.
func DefaultStyles() Styles {
	return NewStyles(lipgloss.DefaultRenderer())
}

// NewStyles creates the style set using the given renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		UserLabel: r.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true),
		AssistantLabel: r.NewStyle().
			Foreground(lipgloss.Color("213")).
			Bold(true),
		UserBubble: r.NewStyle().
			Foreground(lipgloss.Color("75")).
			Padding(0, 1).
			MarginLeft(4),
		AssistantText: r.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1).
			MarginRight(4),
		SystemText: r.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true).
			Padding(0, 1),
		StatusBar: r.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		StatusOK: r.NewStyle().
			Foreground(lipgloss.Color("76")).
			Bold(true),
		StatusError: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		InputBorder: r.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")),
		Muted: r.NewStyle().
			Foreground(lipgloss.Color("245")),
		WhiteCursor: r.NewStyle().
			Foreground(lipgloss.Color("15")),
	}
}
