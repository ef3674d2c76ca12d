package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent   = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	colorOwner    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	colorLabel    = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	colorText     = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	colorMuted    = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	colorInverse  = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	colorSelected = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#313244"}
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	ownerStyle   = lipgloss.NewStyle().Foreground(colorOwner).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorLabel)
	snippetStyle = lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(4)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	statusStyle  = lipgloss.NewStyle().Foreground(colorInverse).Background(colorAccent).Padding(0, 1)
	selectStyle  = lipgloss.NewStyle().Background(colorSelected)
	promptStyle  = lipgloss.NewStyle().Foreground(colorOwner).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(colorText)
)
