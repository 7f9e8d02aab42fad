package store

import (
	"context"
	"database/sql"
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

const cardColumns = `id, owner_id, name, credit_limit, closing_day, due_day, is_active, created_at, updated_at`

func scanCard(s scanner) (*ledger.CreditCard, error) {
	var c ledger.CreditCard

	if err := s.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Limit, &c.ClosingDay, &c.DueDay, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCard(ctx context.Context, c *ledger.CreditCard) error {
	query := `
		INSERT INTO credit_cards (owner_id, name, credit_limit, closing_day, due_day, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.OwnerID,
		c.Name,
		c.Limit,
		c.ClosingDay,
		c.DueDay,
		c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return database.Wrap("creating credit card", err)
}

func (s *Store) GetCard(ctx context.Context, owner, id uuid.UUID) (*ledger.CreditCard, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE id = $1 AND owner_id = $2`

	c, err := scanCard(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return nil, database.Wrap("getting credit card", err)
	}

	return c, nil
}

func (s *Store) ListCards(ctx context.Context, owner uuid.UUID) ([]*ledger.CreditCard, error) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE owner_id = $1 ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, database.Wrap("listing credit cards", err)
	}
	defer rows.Close()

	var cards []*ledger.CreditCard

	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning credit card: %w", err)
		}

		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credit card rows: %w", err)
	}

	return cards, nil
}

func (s *Store) UpdateCard(ctx context.Context, c *ledger.CreditCard) error {
	query := `
		UPDATE credit_cards
		SET name = $1, credit_limit = $2, closing_day = $3, due_day = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6 AND owner_id = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name,
		c.Limit,
		c.ClosingDay,
		c.DueDay,
		c.IsActive,
		c.ID,
		c.OwnerID,
	).Scan(&c.UpdatedAt)

	return database.Wrap("updating credit card", err)
}

func (s *Store) DeleteCard(ctx context.Context, owner, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return database.Wrap("deleting credit card", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting credit card: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("deleting credit card: %w", ledger.ErrNotFound)
	}

	return nil
}
