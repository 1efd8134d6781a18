package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripnest/backend/internal/auth"
	"github.com/tripnest/backend/internal/config"
)

func addToken(topLevel *cobra.Command) {
	var user string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user.",
		Long:  "Signs a token with JWT_SECRET that expires after JWT_TTL. Without --user a new user ID is generated.",
		Example: `
tripnest token --user 7d1c1f0e-2b1a-4a55-9a4c-2f9b8c3e5d10
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := uuid.New()
			if user != "" {
				parsed, err := uuid.Parse(user)
				if err != nil {
					return fmt.Errorf("--user: %w", err)
				}
				id = parsed
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			signed, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL).Issue(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user:  %s\ntoken: %s\n", id, signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID to issue the token for")
	topLevel.AddCommand(cmd)
}
