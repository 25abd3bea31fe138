package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/criticalinsight/sly/cmd.Version=v1.0.0"
var Version = "dev"

var (
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "sly",
	Short: "sly — resident agent runtime",
	Long:  "Sly: an event-driven agent runtime that mediates between an LLM reasoner, a local workspace, and external tool servers. Filesystem mutations are staged through a copy-on-write overlay and only promoted on commit.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		var handler slog.Handler
		if jsonLogs {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		} else {
			handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
	// Default behavior with no recognized subcommand: run the agent loop.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent(cmd.Context(), "")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(factCmd())
	rootCmd.AddCommand(supervisorCmd())
	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sly %s\n", Version)
		},
	}
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
