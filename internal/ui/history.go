// internal/ui/history.go
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"astrin/internal/chat"
)

const (
	historyLimit = 50
	emptyHistory = "No saved conversations yet. Chat with Astrin and they will appear here."
)

// historyBinding lists the messages the gateway has stored, newest last.
func historyBinding(c *chat.HistoryClient) feedBinding[[]chat.Message] {
	return feedBinding[[]chat.Message]{
		request: func(ctx context.Context) ([]chat.Message, error) {
			return c.List(ctx, historyLimit)
		},
		isEmpty: func(v []chat.Message) bool { return len(v) == 0 },
		empty:   emptyHistory,
		project: renderHistory,
	}
}

func renderHistory(messages []chat.Message, width int) string {
	var content strings.Builder

	header := fmt.Sprintf("  %-16s  %-10s  %s", "When", "From", "Message")
	content.WriteString(DimStyle.Render(header))
	content.WriteString("\n")
	content.WriteString(DimStyle.Render(strings.Repeat("-", min(75, cardWidth(width)))))
	content.WriteString("\n")

	textWidth := cardWidth(width) - 34
	if textWidth < 10 {
		textWidth = 10
	}

	var lastDay string
	for _, m := range messages {
		when := "unknown"
		if t := m.Time(); !t.IsZero() {
			local := t.Local()
			day := local.Format("2006-01-02")
			when = local.Format("2006-01-02 15:04")
			if day == time.Now().Format("2006-01-02") {
				when = local.Format("Today 15:04")
			}
			if lastDay != "" && day != lastDay {
				content.WriteString("\n")
			}
			lastDay = day
		}

		text := strings.Join(strings.Fields(m.Text), " ")
		if len([]rune(text)) > textWidth {
			text = string([]rune(text)[:textWidth-2]) + ".."
		}

		from := SenderStyle(m.Sender).Width(10).Render(senderName(m.Sender))
		content.WriteString(fmt.Sprintf("  %-16s  %s  %s\n", when, from, text))
	}

	content.WriteString("\n")
	content.WriteString(DimStyle.Render(fmt.Sprintf("Showing the last %d messages", len(messages))))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 2).
		Render(content.String())
}
