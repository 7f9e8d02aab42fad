package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const categoryColumns = `id, owner_id, name, description, type, color, icon, is_active, created_at, updated_at`

func scanCategory(s scanner) (*ledger.Category, error) {
	var c ledger.Category

	if err := s.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Type, &c.Color, &c.Icon, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *ledger.Category) error {
	query := `
		INSERT INTO categories (owner_id, name, description, type, color, icon, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.OwnerID,
		c.Name,
		c.Description,
		c.Type,
		c.Color,
		c.Icon,
		c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return database.Wrap("creating category", err)
}

func (s *Store) GetCategory(ctx context.Context, owner, id uuid.UUID) (*ledger.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND owner_id = $2`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return nil, database.Wrap("getting category", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, owner uuid.UUID) ([]*ledger.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 ORDER BY type, name, id`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, database.Wrap("listing categories", err)
	}
	defer rows.Close()

	var cats []*ledger.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return cats, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *ledger.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, type = $3, color = $4, icon = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7 AND owner_id = $8
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name,
		c.Description,
		c.Type,
		c.Color,
		c.Icon,
		c.IsActive,
		c.ID,
		c.OwnerID,
	).Scan(&c.UpdatedAt)

	return database.Wrap("updating category", err)
}

func (s *Store) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return database.Wrap("deleting category", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("deleting category: %w", ledger.ErrNotFound)
	}

	return nil
}

func (s *Store) CategoryInUse(ctx context.Context, owner, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1 AND owner_id = $2)`

	var inUse bool
	if err := s.db.QueryRowContext(ctx, query, id, owner).Scan(&inUse); err != nil {
		return false, fmt.Errorf("checking category usage: %w", err)
	}

	return inUse, nil
}

func (s *Store) FindRule(ctx context.Context, owner uuid.UUID, description string, typ ledger.Type) (uuid.UUID, error) {
	query := `
		SELECT r.category_id
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id
		WHERE r.owner_id = $1
		  AND c.type = $2
		  AND c.is_active
		  AND $3 ILIKE '%' || r.pattern || '%'
		ORDER BY LENGTH(r.pattern) DESC, r.created_at DESC
		LIMIT 1
	`

	var id uuid.UUID

	err := s.db.QueryRowContext(ctx, query, owner, typ, description).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding category rule: %w", err)
	}

	return id, nil
}

func (s *Store) CreateRule(ctx context.Context, owner uuid.UUID, pattern string, categoryID uuid.UUID) error {
	query := `
		INSERT INTO category_rules (owner_id, pattern, category_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, owner, pattern, categoryID); err != nil {
		return database.Wrap("creating category rule", err)
	}

	return nil
}
