package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"productcatalog/internal/reconcile"
	"productcatalog/internal/store"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Rewrite the whole category cache from the store",
	Long: `Put every active category into the cache, remove every inactive one and
render a fresh hierarchy snapshot. Use after a cache flush or a long broker
outage.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := setup(true)
		if err != nil {
			return err
		}
		defer d.close()

		ctx := commandContext(cmd)
		categoryStore := store.NewCategoryStore(d.db)
		categoryCache := d.categoryCache()

		categories, err := categoryStore.List(ctx)
		if err != nil {
			return err
		}
		stats, err := reconcile.New(categoryStore, categoryCache).Resync(ctx, categories)
		if err != nil {
			return err
		}
		flat := categoryCache.ReadAll(ctx)

		slog.Info("cache resynced",
			"put", stats.Put,
			"removed", stats.Removed,
			"cached", len(flat),
		)
		return nil
	},
}
