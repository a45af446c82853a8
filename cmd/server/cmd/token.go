package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/RafexStrike/eventment-server/internal/auth"
	"github.com/spf13/cobra"
)

var errTokenInProduction = errors.New("development tokens cannot be issued in production")

type tokenOptions struct {
	email string
	uid   string
	ttl   time.Duration
}

func newTokenCommand() *cobra.Command {
	opts := tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		Long: `Prints an HS256 bearer token for the given email, signed with JWT_SECRET.
The server accepts it when AUTH_PROVIDER=jwt. Refused in production.

Example:
  curl -H "Authorization: Bearer $(server token --email me@example.com)" \
    "http://localhost:3001/events?email=me@example.com"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if cfg.Environment == "production" {
				return errTokenInProduction
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).
				Generate(opts.uid, opts.email, opts.ttl)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "email claim of the token")
	cmd.Flags().StringVar(&opts.uid, "uid", "dev-user", "subject of the token")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
