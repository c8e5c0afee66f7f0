package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrin/internal/config"
	"astrin/internal/logging"
	"astrin/internal/remote"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd runs the terminal client
var rootCmd = &cobra.Command{
	Use:   "astrin",
	Short: "Astrin - space data and a cosmic chat companion in your terminal",
	Long: `Astrin shows near-Earth objects, the astronomy picture of the day,
Mars weather, the ISS position and upcoming SpaceX launches, and lets you
chat with Astrin, an AI companion for all things space.

Run without arguments to start the interactive terminal client.
Run "astrin serve" to start the backend the client talks to.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		// The interactive client owns the terminal, so it logs to a file.
		if cmd == cmd.Root() {
			logger, err = logging.ForTerminalUI(cfg.Log)
		} else {
			logger, err = logging.New(cfg.Log)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	feedsCmd.Flags().DurationVar(&feedsTimeout, "timeout", 0, "Overall timeout (default: none)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of most recent messages to show (0 for all)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: dated file in the current directory)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(feedsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAPIClient builds the client for the Astrin backend from the api section.
func newAPIClient() *remote.Client {
	return remote.New(cfg.API.BaseURL,
		remote.WithRetry(remote.RetryConfig{
			MaxAttempts: cfg.API.RetryAttempts,
			BaseDelay:   cfg.RetryDelay(),
			MaxDelay:    10 * cfg.RetryDelay(),
		}),
		remote.WithLogger(logger.Named("remote")),
	)
}
