package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
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

const goalColumns = `id, owner_id, title, description, target_amount, current_amount, target_date, created_at, updated_at`

func scanGoal(s scanner) (*goal.Goal, error) {
	var g goal.Goal

	if err := s.Scan(
		&g.ID, &g.OwnerID, &g.Title, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate,
		&g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.TargetDate = ledger.DateOnly(g.TargetDate)

	return &g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (owner_id, title, description, target_amount, current_amount, target_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.OwnerID,
		g.Title,
		g.Description,
		g.TargetAmount,
		g.CurrentAmount,
		g.TargetDate,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)

	return database.Wrap("creating goal", err)
}

func (s *Store) GetGoal(ctx context.Context, owner, id uuid.UUID) (*goal.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND owner_id = $2`

	g, err := scanGoal(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return nil, database.Wrap("getting goal", err)
	}

	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, owner uuid.UUID) ([]*goal.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner_id = $1 ORDER BY target_date, id`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, database.Wrap("listing goals", err)
	}
	defer rows.Close()

	var goals []*goal.Goal

	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goal rows: %w", err)
	}

	return goals, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		UPDATE goals
		SET title = $1, description = $2, target_amount = $3, target_date = $4, updated_at = NOW()
		WHERE id = $5 AND owner_id = $6
		RETURNING current_amount, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.Title,
		g.Description,
		g.TargetAmount,
		g.TargetDate,
		g.ID,
		g.OwnerID,
	).Scan(&g.CurrentAmount, &g.UpdatedAt)

	return database.Wrap("updating goal", err)
}

func (s *Store) DeleteGoal(ctx context.Context, owner, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return database.Wrap("deleting goal", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("deleting goal: %w", ledger.ErrNotFound)
	}

	return nil
}

// AddProgress relies on the row lock taken by UPDATE, so concurrent calls
// never lose an increment.
func (s *Store) AddProgress(ctx context.Context, owner, id uuid.UUID, amount int64) (*goal.Goal, error) {
	query := `
		UPDATE goals
		SET current_amount = current_amount + $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 AND current_amount < target_amount
		RETURNING ` + goalColumns

	g, err := scanGoal(s.db.QueryRowContext(ctx, query, amount, id, owner))
	if err == nil {
		return g, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, database.Wrap("adding goal progress", err)
	}

	if _, err := s.GetGoal(ctx, owner, id); err != nil {
		return nil, err
	}

	return nil, goal.ErrCompleted
}
