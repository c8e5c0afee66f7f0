// internal/ui/help.go
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"astrin/internal/feeds"
)

// Help overlay content and rendering

var (
	// Help section title style
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan).
			MarginBottom(1)

	// Help section header style
	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Yellow).
				MarginTop(1)

	// Help key style (for keybindings)
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// Help command style (for slash commands)
	helpCmdStyle = lipgloss.NewStyle().
			Foreground(Magenta)

	// Help description style
	helpDescStyle = lipgloss.NewStyle().
			Foreground(White)

	// Help dim style (for secondary info)
	helpDimStyle = lipgloss.NewStyle().
			Foreground(Dim)

)

// HelpContent returns the formatted help overlay content
func HelpContent(width, height int) string {
	var content strings.Builder

	content.WriteString(helpTitleStyle.Render("ASTRIN HELP"))
	content.WriteString("\n\n")

	// Keybindings section
	content.WriteString(helpSectionStyle.Render("KEYBINDINGS"))
	content.WriteString("\n\n")

	keybindings := []struct {
		key  string
		desc string
	}{
		{"↑/↓ or k/j", "Move through the home menu"},
		{"Enter", "Open the selected screen / send a chat message"},
		{"Esc", "Close help / Return to the home menu"},
		{"r", "Reload the current feed"},
		{"PgUp/PgDn", "Scroll the current screen"},
		{"F1 / ?", "Toggle this help overlay"},
		{"q", "Quit (outside the chat)"},
		{"Ctrl+C", "Quit Astrin"},
	}

	for _, kb := range keybindings {
		key := helpKeyStyle.Width(14).Render(kb.key)
		desc := helpDescStyle.Render(kb.desc)
		content.WriteString("  " + key + "  " + desc + "\n")
	}

	// Slash commands section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("CHAT COMMANDS"))
	content.WriteString("\n\n")

	chatCommands := []struct {
		cmd  string
		desc string
	}{
		{"/help", "Show the command list below the chat"},
		{"/export [path]", "Save the conversation as Markdown"},
		{"/back", "Return to the home menu"},
	}

	for _, cmd := range chatCommands {
		cmdStr := helpCmdStyle.Width(16).Render(cmd.cmd)
		desc := helpDescStyle.Render(cmd.desc)
		content.WriteString("  " + cmdStr + "  " + desc + "\n")
	}

	// Severity legend
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("NEAR-EARTH OBJECT SEVERITY"))
	content.WriteString("\n\n")

	legend := []struct {
		severity feeds.Severity
		desc     string
	}{
		{feeds.SeverityLow, "Low - distant or small"},
		{feeds.SeverityModerate, "Moderate - worth watching"},
		{feeds.SeverityHigh, "High - potentially hazardous"},
		{feeds.SeverityInfo, "Info - everything else"},
	}

	for _, l := range legend {
		symbol := lipgloss.NewStyle().Foreground(SeverityColor(l.severity)).Bold(true).Width(3).Render("●")
		content.WriteString("  " + symbol + "  " + helpDescStyle.Render(l.desc) + "\n")
	}

	// Feeds section
	content.WriteString("\n")
	content.WriteString(helpSectionStyle.Render("FEEDS"))
	content.WriteString("\n\n")

	for _, info := range feeds.Catalog {
		line := info.Name + ": " + info.Description
		if info.Polled {
			line += " (refreshes automatically)"
		}
		content.WriteString("  " + helpDimStyle.Render(line) + "\n")
	}

	// Footer
	content.WriteString("\n")
	footer := helpDimStyle.Render("Press F1 or Esc to close this help")
	content.WriteString(lipgloss.PlaceHorizontal(max(width-8, 0), lipgloss.Center, footer))

	// Build the overlay box
	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 3).
		MaxWidth(max(width-10, 20)).
		MaxHeight(max(height-4, 10))

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(content.String()),
	)
}

// renderHelp renders the help overlay (called from app.go)
func (m Model) renderHelp() string {
	return HelpContent(m.width, m.height)
}
