// Package cli implements the tripnest command line: the API server and the
// operational subcommands that share its configuration.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// New returns the root command with every subcommand attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tripnest",
		Short:        "TripNest trip planning API.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	addServe(cmd)
	addMigrate(cmd)
	addToken(cmd)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the JSON logger every subcommand writes to.
// An unknown level falls back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
