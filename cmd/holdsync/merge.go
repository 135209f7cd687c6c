package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/holdstate/internal/reconcile"
)

func newMergeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <backup-file>...",
		Short: "Merge profiles from backup files into the database",
		Long: `Merge profiles from one or more backup files into the database.

Profiles are matched by player name. The database copy is the base; each
backup file is a source whose hold IDs are first remapped with the map
recorded for it (see "holdsync rekey"), keyed by the file's base name.
Challenge records are unioned. Script variables keep the first value seen.

Examples:
  holdsync merge laptop.db
  holdsync merge --dry-run laptop.db old-pc.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			sources := make([]reconcile.Source, 0, len(args)+1)
			sources = append(sources, reconcile.Repository("db", database.Profiles()))
			for _, path := range args {
				sources = append(sources, reconcile.BackupFile(path))
			}

			im := reconcile.NewImporter(database.HoldRemaps(), a.cfg.ImportWorkers)
			res, err := im.Import(ctx, sources...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range res.Conflicts {
				fmt.Fprintf(out, "conflict: %s from %s: %v\n", c.Profile, c.Source, c.Vars)
			}
			if dryRun {
				for _, p := range res.Profiles {
					printProfile(out, p)
				}
				return nil
			}

			if err := database.Sync().SaveProfiles(ctx, res.Profiles); err != nil {
				return err
			}
			fmt.Fprintf(out, "merged %d profiles from %d sources\n", len(res.Profiles), len(sources))
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "print the merged profiles without saving")
	return cmd
}
