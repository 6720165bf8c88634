package main

import (
	"errors"
	"fmt"

	"shareit/internal/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBackupCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Take one snapshot of the store and prune old ones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if out != "" {
				cfg.Database.Backup.StoragePath = out
			}
			if cfg.Database.Backup.StoragePath == "" {
				return errors.New("backup storage path is not configured")
			}

			logger := opts.logger()
			db, err := opts.openDB(cfg, logger)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			svc := database.NewBackupService(db, cfg.Database.Backup, logger)
			path, err := svc.PerformBackup(cmd.Context())
			if err != nil {
				return err
			}
			svc.CleanupOldBackups()

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "backup written: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "backup directory, overrides database.backup.storage_path")
	return cmd
}
