package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrin/internal/chat"
	"astrin/internal/export"
)

var (
	historyLimit int
	exportOut    string
)

// historyCmd prints stored chat history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show chat history stored by the backend",
	Long: `History reads the backend's SQLite database directly and prints the
most recent chat messages, oldest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// exportCmd writes stored chat history to Markdown
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored chat history as a Markdown transcript",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	messages, err := store.ListMessages(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	printHistory(cmd.OutOrStdout(), messages)
	return nil
}

func printHistory(w io.Writer, messages []chat.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(w, "No chat history yet.")
		return
	}
	for _, m := range messages {
		when := m.Timestamp
		if t := m.Time(); !t.IsZero() {
			when = t.Local().Format("2006-01-02 15:04:05")
		}
		who := "You"
		if m.Sender == chat.SenderAssistant {
			who = "Astrin"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", when, who, strings.ReplaceAll(m.Text, "\n", "\n    "))
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	messages, err := store.ListMessages(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	now := time.Now()
	path := exportOut
	if path == "" {
		path = filepath.Join(".", export.DefaultFilename("astrin history", now))
	}
	if err := export.WriteFile(path, export.Transcript("Astrin Chat History", messages, now)); err != nil {
		return fmt.Errorf("export history: %w", err)
	}

	logger.Info("history exported", zap.String("path", path), zap.Int("messages", len(messages)))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(messages), path)
	return nil
}
