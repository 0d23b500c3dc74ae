package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/db"
	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/internal/imagestore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the forum tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		// db.New migrates on open
		database, err := db.New(&cfg.Database, cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer database.Close()

		logger.Info("Migrations applied", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep-spoilers",
	Short: "Clear expired spoiler tags, including rows nobody has read",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		database, err := db.New(&cfg.Database, cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer database.Close()

		svc := forum.NewService(db.NewStore(database.DB), imagestore.Disabled{}, forum.SystemClock, logger, forum.Config{
			EditWindow: cfg.Forum.EditWindow,
			MaxEdits:   cfg.Forum.MaxEdits,
		})
		cleared, err := svc.SweepExpiredSpoilers(cmd.Context())
		if err != nil {
			return err
		}

		logger.Info("Expired spoilers cleared", zap.Int64("rows", cleared))
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d expired spoiler tags\n", cleared)
		return nil
	},
}
