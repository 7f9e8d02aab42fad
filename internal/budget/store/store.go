package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/budget"
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

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const budgetColumns = `id, owner_id, name, month, year, amount, spent, created_at, updated_at`

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget

	if err := s.Scan(
		&b.ID, &b.OwnerID, &b.Name, &b.Month, &b.Year, &b.Amount, &b.Spent,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO budgets (owner_id, name, month, year, amount, spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		b.OwnerID,
		b.Name,
		b.Month,
		b.Year,
		b.Amount,
		b.Spent,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return database.Wrap("creating budget", err)
	}

	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return err
	}

	return database.Wrap("committing budget", tx.Commit())
}

func (s *Store) GetBudget(ctx context.Context, owner, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND owner_id = $2`

	return s.getOne(ctx, query, id, owner)
}

func (s *Store) GetBudgetByMonth(ctx context.Context, owner uuid.UUID, month, year int) (*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE owner_id = $1 AND month = $2 AND year = $3`

	return s.getOne(ctx, query, owner, month, year)
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (*budget.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, database.Wrap("getting budget", err)
	}

	if err := s.loadItems(ctx, []*budget.Budget{b}); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context, owner uuid.UUID, year *int) ([]*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE owner_id = $1`
	args := []any{owner}

	if year != nil {
		query += ` AND year = $2`
		args = append(args, *year)
	}

	query += ` ORDER BY year DESC, month DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.Wrap("listing budgets", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget rows: %w", err)
	}

	if err := s.loadItems(ctx, budgets); err != nil {
		return nil, err
	}

	return budgets, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		UPDATE budgets
		SET name = $1, amount = $2, spent = $3, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5
		RETURNING updated_at
	`

	err = tx.QueryRowContext(ctx, query, b.Name, b.Amount, b.Spent, b.ID, b.OwnerID).Scan(&b.UpdatedAt)
	if err != nil {
		return database.Wrap("updating budget", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_items WHERE budget_id = $1`, b.ID); err != nil {
		return database.Wrap("clearing budget items", err)
	}

	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return err
	}

	return database.Wrap("committing budget", tx.Commit())
}

func (s *Store) DeleteBudget(ctx context.Context, owner, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return database.Wrap("deleting budget", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("deleting budget: %w", ledger.ErrNotFound)
	}

	return nil
}

func insertItems(ctx context.Context, q querier, budgetID uuid.UUID, items []budget.Item) error {
	query := `INSERT INTO budget_items (budget_id, category_id, planned, spent) VALUES ($1, $2, $3, $4)`

	for _, it := range items {
		if _, err := q.ExecContext(ctx, query, budgetID, it.CategoryID, it.Planned, it.Spent); err != nil {
			return database.Wrap("inserting budget item", err)
		}
	}

	return nil
}

func (s *Store) loadItems(ctx context.Context, budgets []*budget.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*budget.Budget, len(budgets))
	ids := make([]string, len(budgets))

	for i, b := range budgets {
		byID[b.ID] = b
		ids[i] = b.ID.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT budget_id, category_id, planned, spent
		FROM budget_items
		WHERE budget_id = ANY($1::uuid[])
		ORDER BY planned DESC, category_id
	`, ids)
	if err != nil {
		return database.Wrap("loading budget items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			budgetID uuid.UUID
			it       budget.Item
		)

		if err := rows.Scan(&budgetID, &it.CategoryID, &it.Planned, &it.Spent); err != nil {
			return fmt.Errorf("scanning budget item: %w", err)
		}

		b, ok := byID[budgetID]
		if !ok {
			return errors.New("budget item without budget")
		}

		b.Items = append(b.Items, it)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating budget item rows: %w", err)
	}

	return nil
}
