package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/udisondev/holdstate/internal/backup"
	"github.com/udisondev/holdstate/internal/model"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Snapshot every database profile into a backup file",
		Long: `Snapshot every database profile into a backup file.

The file defaults to backup_path from the config. Earlier snapshots in the
file are kept. With --list the snapshots already in the file are printed
and the database is not touched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, _ := cmd.Flags().GetBool("list")
			path := a.backupPath(args)

			openStore := backup.Open
			if list {
				openStore = backup.OpenExisting
			}
			store, err := openStore(ctx, path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			if list {
				snapshots, err := store.Snapshots(ctx)
				if err != nil {
					return err
				}
				for _, s := range snapshots {
					fmt.Fprintf(out, "%s  %s  %s  %s\n",
						s.ID, s.CreatedAt.UTC().Format(time.RFC3339), s.Profile.ID(), s.Profile.Name())
				}
				return nil
			}

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			profiles, err := database.Profiles().List(ctx)
			if err != nil {
				return err
			}
			if err := store.Write(ctx, profiles...); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %d snapshots to %s\n", len(profiles), store.Path())
			return nil
		},
	}

	cmd.Flags().Bool("list", false, "list snapshots in the file")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Restore the latest snapshot of each profile into the database",
		Long: `Restore profiles from a backup file into the database.

Each profile's newest snapshot overwrites the stored copy. Damaged snapshots
are skipped. With --profile only that profile is restored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			only, _ := cmd.Flags().GetString("profile")

			store, err := backup.OpenExisting(ctx, a.backupPath(args))
			if err != nil {
				return err
			}
			defer store.Close()

			var profiles []*model.PlayerProfile
			if only != "" {
				id, err := uuid.Parse(only)
				if err != nil {
					return fmt.Errorf("invalid --profile: %w", err)
				}
				snapshots, err := store.ProfileSnapshots(ctx, id)
				if err != nil {
					return err
				}
				if len(snapshots) == 0 {
					return fmt.Errorf("no snapshots for profile %s in %s", id, store.Path())
				}
				profiles = append(profiles, snapshots[len(snapshots)-1].Profile)
			} else {
				profiles, err = store.Latest(ctx)
				if err != nil {
					return err
				}
			}

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Sync().SaveProfiles(ctx, profiles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d profiles from %s\n", len(profiles), store.Path())
			return nil
		},
	}

	cmd.Flags().String("profile", "", "restore a single profile by ID")
	return cmd
}
