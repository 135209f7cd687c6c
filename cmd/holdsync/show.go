package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/udisondev/holdstate/internal/model"
	"github.com/udisondev/holdstate/internal/reconcile"
	"github.com/udisondev/holdstate/internal/scriptvars"
)

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print profiles with their challenges and script variables",
		Long: `Print stored profiles with completed challenges per hold and custom script variables.

By default profiles are read from the database. With --backup the latest
snapshot of each profile in the given backup file is shown instead.

Examples:
  holdsync show
  holdsync show Beethro
  holdsync show --backup laptop.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			from, _ := cmd.Flags().GetString("backup")

			var (
				profiles []*model.PlayerProfile
				err      error
			)
			if from != "" {
				profiles, err = reconcile.BackupFile(from).Profiles(ctx)
			} else {
				database, dbErr := a.openDB(ctx)
				if dbErr != nil {
					return dbErr
				}
				defer database.Close()
				if len(args) > 0 {
					profiles, err = database.Profiles().LoadByName(ctx, args[0])
				} else {
					profiles, err = database.Profiles().List(ctx)
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown := 0
			for _, p := range profiles {
				if len(args) > 0 && p.Name() != args[0] {
					continue
				}
				printProfile(out, p)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "no profiles")
			}
			return nil
		},
	}

	cmd.Flags().String("backup", "", "read the latest snapshots from a backup file")
	return cmd
}

func printProfile(w io.Writer, p *model.PlayerProfile) {
	fmt.Fprintf(w, "%s  %s  updated %s\n", p.Name(), p.ID(), p.UpdatedAt().UTC().Format(time.RFC3339))

	c := p.Challenges()
	fmt.Fprintf(w, "  challenges: %d\n", c.Count())
	for _, holdID := range c.HoldIDs() {
		fmt.Fprintf(w, "    hold %d: %s\n", holdID, strings.Join(c.Get(holdID), ", "))
	}

	vars := p.ScriptVars()
	names := vars.Names()
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(w, "  vars:")
	for _, name := range names {
		scope := ""
		if scriptvars.IsCharacterLocalVar(name) {
			scope = "  (local)"
		}
		fmt.Fprintf(w, "    %s = %s%s\n", name, vars.Get(name), scope)
	}
}

func newVarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vars",
		Short: "List predefined script variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			tag, err := language.Parse(lang)
			if err != nil {
				return fmt.Errorf("invalid --lang %q: %w", lang, err)
			}

			out := cmd.OutOrStdout()
			for _, id := range scriptvars.All() {
				fmt.Fprintf(out, "%4d  %-16s %-5s %s\n",
					int32(id), scriptvars.VarName(id), scriptvars.PredefinedKey(id).Kind(), scriptvars.DisplayName(id, tag))
			}
			return nil
		},
	}

	cmd.Flags().String("lang", "en", "language for display names (BCP 47)")
	return cmd
}
