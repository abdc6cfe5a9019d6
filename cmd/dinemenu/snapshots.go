package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dinemenu/internal/config"
	"github.com/dukerupert/dinemenu/internal/database"
	"github.com/dukerupert/dinemenu/internal/store"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots <restaurant>",
	Short: "List recorded menu fetches of a restaurant",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshots,
}

func init() {
	snapshotsCmd.Flags().Int("limit", store.DefaultSnapshotLimit, "number of snapshots to list")
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	cfg := config.Load(v)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	snaps, err := store.NewSnapshotStore(db, nil).List(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no snapshots for %s\n", args[0])
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FETCHED\tTITLE\tCATEGORIES\tITEMS\tDIGEST")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			s.FetchedAt.Local().Format(time.DateTime), s.Title, s.CategoryCount, s.ItemCount, s.Digest[:12])
	}
	return tw.Flush()
}
