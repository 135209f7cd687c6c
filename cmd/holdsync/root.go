package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/holdstate/internal/config"
	"github.com/udisondev/holdstate/internal/db"
	"github.com/udisondev/holdstate/internal/scriptvars"
)

const ConfigPath = "config/holdstate.yaml"

// app carries state shared by subcommands after the root pre-run.
type app struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:           "holdsync",
		Short:         "Inspect, merge and back up hold progress records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default $HOLDSTATE_CONFIG or "+ConfigPath+")")

	cmd.AddCommand(
		newShowCmd(a),
		newVarsCmd(),
		newMergeCmd(a),
		newRekeyCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = ConfigPath
		if p := os.Getenv("HOLDSTATE_CONFIG"); p != "" {
			cfgPath = p
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})))

	scriptvars.Init()
	scriptvars.SetLocalVarRule(scriptvars.PrefixRule(cfg.LocalVarPrefix))

	a.cfg = cfg
	slog.Debug("config loaded", "path", cfgPath, "backup", cfg.BackupPath, "db_host", cfg.Database.Host)
	return nil
}

// openDB connects to PostgreSQL and applies migrations.
func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	dsn := a.cfg.Database.DSN()

	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, dsn); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database, nil
}

// backupPath returns args[0] or the configured backup file.
func (a *app) backupPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return a.cfg.BackupPath
}
