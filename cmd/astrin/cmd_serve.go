package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrin/internal/db"
	"astrin/internal/gateway"
)

// serveCmd runs the HTTP backend
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Astrin backend (feeds proxy, chat and history)",
	Long: `Serve proxies the NASA, ISS and SpaceX feeds, answers chat messages
through the Together AI chat completion API and stores chat history in a
local SQLite database.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("failed to close history store", zap.Error(closeErr))
		}
	}()

	if cfg.Server.TogetherAPIKey == "" {
		logger.Warn("TOGETHER_API_KEY is not set; chat replies will fail")
	}
	completer := gateway.NewTogetherCompleter(cfg.Server.TogetherBaseURL, cfg.Server.TogetherAPIKey, cfg.Server.ChatModel)

	srv := gateway.New(cfg.Server, store, completer, gateway.WithLogger(logger.Named("gateway")))
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	return nil
}

// openStore opens the configured history database, or the default one.
func openStore() (*db.Store, error) {
	var (
		store *db.Store
		err   error
	)
	if cfg.Server.DBPath != "" {
		store, err = db.Open(cfg.Server.DBPath)
	} else {
		store, err = db.OpenDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}
