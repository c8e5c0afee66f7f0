// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"astrin/internal/chat"
	"astrin/internal/feeds"
)

var (
	// Colors
	Cyan     = lipgloss.Color("#00FFFF")
	Green    = lipgloss.Color("#00FF00")
	Yellow   = lipgloss.Color("#FFD700")
	Orange   = lipgloss.Color("#FFA500")
	Red      = lipgloss.Color("#FF6B6B")
	Purple   = lipgloss.Color("#B388FF")
	Magenta  = lipgloss.Color("#FF00FF")
	SkyBlue  = lipgloss.Color("#87CEEB")
	Dim      = lipgloss.Color("#555555")
	White    = lipgloss.Color("#FFFFFF")
	DarkGray = lipgloss.Color("#333333")

	UserColor      = SkyBlue
	AssistantColor = Cyan

	// Box styles
	ActiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan)

	InactiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dim)

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SkyBlue)

	UserStyle = lipgloss.NewStyle().
			Foreground(UserColor).
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(AssistantColor).
			Bold(true)

	SystemStyle = lipgloss.NewStyle().
			Foreground(Yellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	// Status indicators
	StatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	StatusCrit = lipgloss.NewStyle().Foreground(Red).Bold(true)

	// Menu styles
	ActiveItemStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	InactiveItemStyle = lipgloss.NewStyle().
				Foreground(White)
)

// SeverityColor returns the card color for a near-Earth object grade.
func SeverityColor(s feeds.Severity) lipgloss.Color {
	switch s.Normalize() {
	case feeds.SeverityLow:
		return Green
	case feeds.SeverityModerate:
		return Yellow
	case feeds.SeverityHigh:
		return Purple
	default:
		return Cyan
	}
}

// SenderStyle returns the header style for a chat message author.
func SenderStyle(sender chat.Sender) lipgloss.Style {
	switch sender {
	case chat.SenderUser:
		return UserStyle
	case chat.SenderAssistant:
		return AssistantStyle
	default:
		return lipgloss.NewStyle().Foreground(White)
	}
}
