package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"productcatalog/internal/models"
	"productcatalog/internal/store"
)

var outboxLimit int

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "List the most recent recorded fallback events",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := setup(false)
		if err != nil {
			return err
		}
		defer d.close()

		entries, err := store.NewFallbackLogStore(d.db).RecentEntries(commandContext(cmd), outboxLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RECORDED\tOPERATION\tCATEGORY\tEVENT")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.RecordedAt.UTC().Format(models.DateLayout), e.Operation, e.CategoryID, e.EventID)
		}
		return w.Flush()
	},
}

func init() {
	outboxCmd.Flags().IntVarP(&outboxLimit, "limit", "n", 20, "number of entries to show")
}
