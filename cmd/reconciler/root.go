package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"productcatalog/internal/cache"
	"productcatalog/internal/config"
	"productcatalog/internal/database"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Repair the product category cache",
	Long: `Consume category cache fallback events and bring the Valkey copy of the
category hierarchy back in line with PostgreSQL.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd, resyncCmd, outboxCmd)
}

// Execute runs the root command. It is called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps are the clients every subcommand needs.
type deps struct {
	cfg    *config.Config
	db     *sql.DB
	valkey *redis.Client
}

// setup loads configuration, installs the logger and opens the database.
// Valkey is only connected when withCache is set.
func setup(withCache bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	slog.SetDefault(cfg.NewLogger(os.Stderr))

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, db: db}

	if withCache {
		d.valkey, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return d, nil
}

func (d *deps) close() {
	if d.valkey != nil {
		d.valkey.Close()
	}
	d.db.Close()
}

func (d *deps) categoryCache() *cache.CategoryCache {
	return cache.NewCategoryCache(cache.NewRedisBackend(d.valkey))
}

// commandContext returns cmd's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
