package cmd

import (
	"context"
	"fmt"

	"github.com/RafexStrike/eventment-server/internal/config"
	"github.com/spf13/cobra"
)

func newIndexesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes the server relies on",
		Long: `Creates the startDate, type, owner and featured indexes on the events
collection and the unique (email, groupID) index on the joined collection.
Existing indexes with the same definition are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := config.NewLogger(cfg.Logging)

			client, repo, err := openStore(cmd.Context(), cfg.Mongo)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			names, err := repo.EnsureIndexes(cmd.Context())
			if err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			logger.Info().Str("database", cfg.Mongo.Database).Strs("indexes", names).Msg("indexes ensured")
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
