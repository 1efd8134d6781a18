package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/tripnest/backend/internal/config"
	"github.com/tripnest/backend/migrations"
)

func addMigrate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status|reset]",
		Short: "Apply or roll back the database schema.",
		Long: `Runs the embedded goose migrations against DATABASE_URL.

  up      apply every pending migration (default)
  down    roll back the most recent migration
  status  list migrations and whether they are applied
  reset   roll back every migration`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := sql.Open("pgx", cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
			if err != nil {
				return fmt.Errorf("create goose provider: %w", err)
			}
			return migrate(cmd.Context(), provider, action, cmd.OutOrStdout())
		},
	}
	topLevel.AddCommand(cmd)
}

func migrate(ctx context.Context, p *goose.Provider, action string, w io.Writer) error {
	switch action {
	case "up":
		results, err := p.Up(ctx)
		printResults(w, results)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(w, "no pending migrations")
		}
	case "down":
		result, err := p.Down(ctx)
		if result != nil {
			printResults(w, []*goose.MigrationResult{result})
		}
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "reset":
		results, err := p.DownTo(ctx, 0)
		printResults(w, results)
		if err != nil {
			return fmt.Errorf("migrate reset: %w", err)
		}
	case "status":
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%-8s %-20s %s\n", s.State, applied, filepath.Base(s.Source.Path))
		}
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	return nil
}

func printResults(w io.Writer, results []*goose.MigrationResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%-4s %s (%s)\n", r.Direction, filepath.Base(r.Source.Path), r.Duration.Round(1e6))
	}
}
