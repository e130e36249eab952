// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"productcatalog/internal/models"
)

// ErrDuplicateName is wrapped into Save errors when the unique name
// constraint rejects the write.
var ErrDuplicateName = errors.New("category name already exists")

// ErrSelfParent is wrapped into Save errors when a category would become its
// own parent.
var ErrSelfParent = errors.New("category cannot be its own parent")

// PostgreSQL SQLSTATEs and constraint names classify recognizes.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	constraintParentNotSelf = "categories_parent_not_self"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, parent_id, is_active, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.ParentID,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a category by ID, active or not. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName retrieves a category by its normalized name, active or not.
// Returns nil if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// Save inserts the category when its ID is zero and updates it otherwise.
// The stored row is returned, so inserts come back with their assigned ID.
func (s *CategoryStore) Save(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.ID == 0 {
		return s.insert(ctx, c)
	}
	return s.update(ctx, c)
}

func (s *CategoryStore) insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description, parent_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.ParentID, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", classify(err))
	}
	return result, nil
}

func (s *CategoryStore) update(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories SET
			name = $1, description = $2, parent_id = $3,
			is_active = $4, created_at = $5, updated_at = $6
		WHERE id = $7
		RETURNING `+categoryColumns,
		c.Name, c.Description, c.ParentID, c.IsActive, c.CreatedAt, c.UpdatedAt, c.ID,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("update category %d: no such row", c.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", c.ID, classify(err))
	}
	return result, nil
}

// List returns every category, active or not, ordered by id.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Count returns the total number of category rows, including inactive ones.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// classify maps known PostgreSQL errors to package sentinels.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicateName, pgErr.Detail)
	case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == constraintParentNotSelf:
		return fmt.Errorf("%w: %s", ErrSelfParent, pgErr.Message)
	}
	return err
}
