package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrin/internal/chat"
	"astrin/internal/feeds"
	"astrin/internal/ui"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	api := newAPIClient()

	history := chat.NewHistoryClient(api)
	history.SetEnabled(cfg.Chat.PersistHistory)
	transport := chat.NewHTTPTransport(api)

	newSession := func(notify func()) ui.ChatSession {
		return chat.NewSession(transport,
			chat.WithPersister(history),
			chat.WithLogger(logger.Named("chat")),
			chat.WithNotify(notify),
			chat.WithPersistTimeout(cfg.PersistTimeout()),
			chat.WithRequestTimeout(cfg.RequestTimeout()),
		)
	}

	model := ui.New(ui.Deps{
		Feeds:          feeds.NewClient(api),
		History:        history,
		NewSession:     newSession,
		PollInterval:   cfg.ISSPollInterval(),
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         logger,
	})

	logger.Info("starting terminal client", zap.String("api", cfg.API.BaseURL))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(ui.Model); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("terminal client: %w", err)
	}
	return nil
}
