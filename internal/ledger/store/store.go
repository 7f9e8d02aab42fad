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

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, owner_id, name, type, balance, is_active, version, created_at, updated_at`

func scanAccount(s scanner) (*ledger.Account, error) {
	var acc ledger.Account

	var typeStr string

	if err := s.Scan(
		&acc.ID, &acc.OwnerID, &acc.Name, &typeStr, &acc.Balance, &acc.IsActive, &acc.Version,
		&acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	acc.Type = ledger.AccountType(typeStr)

	return &acc, nil
}

// Expected column order: id, owner_id, description, amount, type, date, is_paid, installments,
// current_installment, category_id, account_id, credit_card_id, goal_id, created_at, updated_at
const transactionColumns = `
	id, owner_id, description, amount, type, date, is_paid, installments, current_installment,
	category_id, account_id, credit_card_id, goal_id, created_at, updated_at
`

func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var t ledger.Transaction

	var typeStr string

	var installments, current sql.NullInt32

	if err := s.Scan(
		&t.ID, &t.OwnerID, &t.Description, &t.Amount, &typeStr, &t.Date, &t.IsPaid,
		&installments, &current,
		&t.CategoryID, &t.AccountID, &t.CreditCardID, &t.GoalID,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Type = ledger.Type(typeStr)

	if installments.Valid {
		t.Installments = new(int(installments.Int32))
	}

	if current.Valid {
		t.CurrentInstallment = new(int(current.Int32))
	}

	return &t, nil
}

func (s *Store) CreateAccount(ctx context.Context, acc *ledger.Account) error {
	query := `
		INSERT INTO accounts (owner_id, name, type, balance, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		acc.OwnerID,
		acc.Name,
		acc.Type,
		acc.Balance,
		acc.IsActive,
	).Scan(&acc.ID, &acc.Version, &acc.CreatedAt, &acc.UpdatedAt)

	return database.Wrap("creating account", err)
}

func (s *Store) GetAccount(ctx context.Context, owner, id uuid.UUID) (*ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND owner_id = $2`

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return nil, database.Wrap("getting account", err)
	}

	return acc, nil
}

func (s *Store) ListAccounts(ctx context.Context, owner uuid.UUID) ([]*ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, database.Wrap("listing accounts", err)
	}
	defer rows.Close()

	var accounts []*ledger.Account

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acc *ledger.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, type = $2, is_active = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5 AND version = $6
		RETURNING version, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		acc.Name,
		acc.Type,
		acc.IsActive,
		acc.ID,
		acc.OwnerID,
		acc.Version,
	).Scan(&acc.Version, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Either gone or changed underneath us.
		if _, getErr := s.GetAccount(ctx, acc.OwnerID, acc.ID); getErr != nil {
			return getErr
		}

		return fmt.Errorf("updating account: %w", ledger.ErrConflict)
	}

	return database.Wrap("updating account", err)
}

func (s *Store) DeleteAccount(ctx context.Context, owner, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return database.Wrap("deleting account", err)
	}

	return requireRow(res, "deleting account")
}

func (s *Store) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error) {
	return getTransaction(ctx, s.db, owner, id, false)
}

func (s *Store) ListTransactions(ctx context.Context, owner uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1`

	args := []any{owner}

	argIdx := 2

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, ledger.DateOnly(*filter.StartDate))
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, ledger.DateOnly(*filter.EndDate))
		argIdx++
	}

	if filter.AccountID != nil {
		query += fmt.Sprintf(" AND account_id = $%d", argIdx)

		args = append(args, *filter.AccountID)
		argIdx++
	}

	if filter.CreditCardID != nil {
		query += fmt.Sprintf(" AND credit_card_id = $%d", argIdx)

		args = append(args, *filter.CreditCardID)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)

		args = append(args, *filter.Type)
	}

	query += " ORDER BY date DESC, created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.Wrap("listing transactions", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func getTransaction(ctx context.Context, q querier, owner, id uuid.UUID, forUpdate bool) (*ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND owner_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}

	t, err := scanTransaction(q.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return nil, database.Wrap("getting transaction", err)
	}

	return t, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, ledger.ErrNotFound)
	}

	return nil
}
