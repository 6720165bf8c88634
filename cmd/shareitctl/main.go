package main

import (
	"errors"
	"os"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "shareitctl",
		Short:         "Maintenance commands for the shareit store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "path to config.yaml")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to sqlite db, overrides the config")

	root.AddCommand(newSeedCmd(opts), newBackupCmd(opts), newSchemaCmd(opts))
	return root
}

func (o *options) logger() *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
	return &l
}

// loadConfig reads the config file. With --db set a missing file is fine.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if o.dbPath == "" || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &config.Config{}
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	return cfg, nil
}

func (o *options) openDB(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	if cfg.Database.Path == "" {
		return nil, errors.New("database path is not configured")
	}
	return database.NewDB(cfg.Database.Path, logger)
}
