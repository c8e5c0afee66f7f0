// internal/export/markdown_test.go
package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"astrin/internal/chat"
)

func sampleConversation() []chat.Message {
	return []chat.Message{
		{ID: "1", Text: chat.Greeting, Sender: chat.SenderAssistant, Timestamp: "2026-02-01T14:30:00Z"},
		{ID: "2", Text: "What is Mars' atmosphere made of?", Sender: chat.SenderUser, Timestamp: "2026-02-01T14:30:05Z"},
		{ID: "3", Text: "Mostly CO2.\nWith traces of argon.", Sender: chat.SenderAssistant, Timestamp: "2026-02-01T14:30:09Z"},
	}
}

func TestTranscript(t *testing.T) {
	exported := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	result := Transcript("Astrin chat", sampleConversation(), exported)

	if !strings.HasPrefix(result, "# Astrin chat\n") {
		t.Error("Expected title header")
	}
	if !strings.Contains(result, "**Messages:** 3") {
		t.Error("Expected message count")
	}
	if !strings.Contains(result, "**Started:** 2026-02-01 14:30:00") {
		t.Error("Expected start time")
	}
	if !strings.Contains(result, "### [14:30:05] You") {
		t.Error("Expected user header")
	}
	if !strings.Contains(result, "### [14:30:09] Astrin") {
		t.Error("Expected assistant header")
	}
	if !strings.Contains(result, "> Mostly CO2.\n> With traces of argon.\n") {
		t.Error("Expected multi-line reply to be block-quoted line by line")
	}
	if !strings.Contains(result, "*Exported from Astrin on 2026-02-01 15:00:00*") {
		t.Error("Expected footer")
	}

	first := strings.Index(result, "What is Mars")
	second := strings.Index(result, "Mostly CO2")
	if first < 0 || second < first {
		t.Error("Expected messages in conversation order")
	}
}

func TestTranscriptKeepsCodeBlocks(t *testing.T) {
	msgs := []chat.Message{{ID: "1", Text: "```\nv = d/t\n```", Sender: chat.SenderAssistant, Timestamp: "bad"}}
	result := Transcript("chat", msgs, time.Now())

	if strings.Contains(result, "> ```") {
		t.Error("Code blocks should not be quoted")
	}
	if !strings.Contains(result, "### [--:--:--] Astrin") {
		t.Error("Expected placeholder time for malformed timestamp")
	}
}

func TestTranscriptEmpty(t *testing.T) {
	result := Transcript("chat", nil, time.Now())
	if !strings.Contains(result, "**Messages:** 0") {
		t.Error("Expected zero message count")
	}
	if strings.Contains(result, "**Started:**") {
		t.Error("Empty transcript has no start time")
	}
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 5, 7, 0, time.UTC)
	got := DefaultFilename("Astrin: Cosmic Chat!", now)
	if got != "2026-02-01-090507-astrin-cosmic-chat.md" {
		t.Errorf("DefaultFilename() = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple Name", "simple-name"},
		{"  --weird--  ", "weird"},
		{"!!!", "chat"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "chat.md")
	if err := WriteFile(path, "# hi\n"); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(data) != "# hi\n" {
		t.Errorf("unexpected content %q", data)
	}
}
