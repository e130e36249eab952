package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// seedRoots are the top-level categories created on an empty development
// database, with one child each.
var seedRoots = []struct {
	name, description string
	child, childDesc  string
}{
	{"footwear", "Shoes, boots and sandals", "sneakers", "Casual and sport sneakers"},
	{"apparel", "Clothing for all seasons", "jackets", "Outerwear and jackets"},
	{"accessories", "Bags, belts and more", "bags", "Handbags and backpacks"},
}

// Seed populates an empty categories table with a small development tree.
// It is a no-op once any category exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range seedRoots {
		var parentID int
		err := tx.QueryRow(`
			INSERT INTO categories (name, description, parent_id, is_active)
			VALUES ($1, $2, 0, TRUE)
			RETURNING id
		`, r.name, r.description).Scan(&parentID)
		if err != nil {
			return fmt.Errorf("seed insert %s: %w", r.name, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO categories (name, description, parent_id, is_active)
			VALUES ($1, $2, $3, TRUE)
		`, r.child, r.childDesc, parentID); err != nil {
			return fmt.Errorf("seed insert %s: %w", r.child, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development categories", "roots", len(seedRoots))
	return nil
}
