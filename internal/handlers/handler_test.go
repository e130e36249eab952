// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"productcatalog/internal/association"
	"productcatalog/internal/cache"
	"productcatalog/internal/database"
	"productcatalog/internal/events"
	"productcatalog/internal/service"
	"productcatalog/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "catalog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "catalog")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		client.Del(ctx, cache.CategoryCollection, cache.HierarchySnapshotKey)
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Store       *store.CategoryStore
	FallbackLog *store.FallbackLogStore
	Cache       *cache.CategoryCache
	Service     *service.CategoryService
	Router      chi.Router
}

// newTestEnv wires the real store, cache and service behind a chi router.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	categoryStore := store.NewCategoryStore(db)
	fallbackLog := store.NewFallbackLogStore(db)
	categoryCache := cache.NewCategoryCache(cache.NewRedisBackend(vk))
	svc := service.New(categoryStore, categoryCache, events.NewLogEmitter(fallbackLog), association.StaticChecker{Safe: true})

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Store:       categoryStore,
		FallbackLog: fallbackLog,
		Cache:       categoryCache,
		Service:     svc,
		Router:      newCategoryRouter(NewCategories(svc)),
	}
}

// newCategoryRouter mounts the category routes the way the production
// router does.
func newCategoryRouter(h *Categories) chi.Router {
	r := chi.NewRouter()
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/parent", h.Roots)
		r.Get("/all", h.All)
		r.Put("/{categoryId}", h.Update)
		r.Delete("/{categoryId}", h.Delete)
		r.Get("/{categoryId}/details", h.Details)
	})
	r.Post("/product/categories", h.Rebuild)
	return r
}
