// internal/export/markdown.go
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"astrin/internal/chat"
)

// Transcript renders a conversation as Markdown.
func Transcript(title string, messages []chat.Message, exportedAt time.Time) string {
	var sb strings.Builder

	// Title header
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n", len(messages)))
	if len(messages) > 0 {
		if start := messages[0].Time(); !start.IsZero() {
			sb.WriteString(fmt.Sprintf("**Started:** %s\n\n", start.Format("2006-01-02 15:04:05")))
		}
	}
	sb.WriteString("---\n\n")

	sb.WriteString("## Transcript\n\n")

	for i, msg := range messages {
		ts := "--:--:--"
		if t := msg.Time(); !t.IsZero() {
			ts = t.Format("15:04:05")
		}
		sb.WriteString(fmt.Sprintf("### [%s] %s\n\n", ts, formatSender(msg.Sender)))

		content := strings.TrimSpace(msg.Text)
		if containsCodeBlock(content) {
			// Content already has code blocks, render as-is
			sb.WriteString(content)
			sb.WriteString("\n")
		} else {
			for _, line := range strings.Split(content, "\n") {
				sb.WriteString("> ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")

		if i < len(messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	// Footer
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from Astrin on %s*\n", exportedAt.Format("2006-01-02 15:04:05")))

	return sb.String()
}

// DefaultFilename returns YYYY-MM-DD-HHMMSS-<title>.md.
func DefaultFilename(title string, now time.Time) string {
	return fmt.Sprintf("%s-%s.md", now.Format("2006-01-02-150405"), sanitizeFilename(title))
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func formatSender(sender chat.Sender) string {
	switch sender {
	case chat.SenderUser:
		return "You"
	case chat.SenderAssistant:
		return "Astrin"
	default:
		return string(sender)
	}
}

// sanitizeFilename removes/replaces characters unsuitable for filenames
func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()

	// Collapse multiple hyphens
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if result == "" {
		result = "chat"
	}
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}

// containsCodeBlock checks if content already has markdown code blocks
func containsCodeBlock(content string) bool {
	return strings.Contains(content, "```")
}
