package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"newsdesk-engine/internal/cleanup"
	"newsdesk-engine/internal/logging"
	"newsdesk-engine/internal/store"
)

func newCleanupCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired articles once and exit",
		Long: "Delete expired articles once and exit. Refuses to run while a server " +
			"owns the data dir; call GET /api/cron/cleanup instead so subscribers are notified.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, warnings, err := loadConfig(o)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, warnings)

			lock := dataLock(cfg.App.DataDir)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock data dir: %w", err)
			}
			if !locked {
				return fmt.Errorf("newsdesk serve is running on %s; use GET /api/cron/cleanup", cfg.App.DataDir)
			}
			defer func() { _ = lock.Unlock() }()

			db, err := store.Open(filepath.Join(cfg.App.DataDir, "newsdesk.db"))
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			res, err := cleanup.Run(cmd.Context(), db.Pool, nil, time.Now(), logging.Component(logger, "cleanup"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired articles at %s\n",
				len(res.DeletedIDs), res.At.UTC().Format(time.RFC3339))
			return nil
		},
	}
}
