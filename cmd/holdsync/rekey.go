package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRekeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rekey <source> [OLD=NEW]...",
		Short: "Record or apply a hold ID import map",
		Long: `Record the hold ID renumbering for an import source.

Without pairs the current map for the source is printed. With pairs the map
is replaced. With --apply the map is also applied to every profile already
in the database, in the same transaction.

Examples:
  holdsync rekey laptop.db
  holdsync rekey laptop.db 5=7 6=8
  holdsync rekey --apply legacy 12=40`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			apply, _ := cmd.Flags().GetBool("apply")
			source := args[0]

			remap, err := parseRemap(args[1:])
			if err != nil {
				return err
			}

			database, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			out := cmd.OutOrStdout()

			if len(remap) == 0 && !apply {
				current, err := database.HoldRemaps().Load(ctx, source)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatRemap(current))
				return nil
			}

			if !apply {
				if err := database.HoldRemaps().Save(ctx, source, remap); err != nil {
					return err
				}
				fmt.Fprintf(out, "recorded %d hold remaps for %s\n", len(remap), source)
				return nil
			}

			changed, err := database.Sync().ApplyRemap(ctx, source, remap)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "recorded %d hold remaps for %s, %d profiles changed\n", len(remap), source, changed)
			return nil
		},
	}

	cmd.Flags().Bool("apply", false, "also rekey profiles stored in the database")
	return cmd
}

// parseRemap parses OLD=NEW pairs. Hold IDs must be positive 32-bit integers
// and each OLD may appear once.
func parseRemap(pairs []string) (map[uint32]uint32, error) {
	remap := make(map[uint32]uint32, len(pairs))
	for _, pair := range pairs {
		oldStr, newStr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid remap %q: want OLD=NEW", pair)
		}
		oldID, err := parseHoldID(oldStr)
		if err != nil {
			return nil, fmt.Errorf("invalid remap %q: %w", pair, err)
		}
		newID, err := parseHoldID(newStr)
		if err != nil {
			return nil, fmt.Errorf("invalid remap %q: %w", pair, err)
		}
		if _, dup := remap[oldID]; dup {
			return nil, fmt.Errorf("hold %d remapped twice", oldID)
		}
		remap[oldID] = newID
	}
	return remap, nil
}

func parseHoldID(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("hold ID %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("hold ID must be positive")
	}
	return uint32(n), nil
}

func formatRemap(remap map[uint32]uint32) string {
	if len(remap) == 0 {
		return "no remaps\n"
	}
	oldIDs := make([]uint32, 0, len(remap))
	for oldID := range remap {
		oldIDs = append(oldIDs, oldID)
	}
	sort.Slice(oldIDs, func(i, j int) bool { return oldIDs[i] < oldIDs[j] })

	var b strings.Builder
	for _, oldID := range oldIDs {
		fmt.Fprintf(&b, "%d=%d\n", oldID, remap[oldID])
	}
	return b.String()
}
