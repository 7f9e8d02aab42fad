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

type unitOfWork struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &unitOfWork{tx: dbTx}, nil
}

func (u *unitOfWork) Commit() error {
	return database.Wrap("committing transaction", u.tx.Commit())
}

func (u *unitOfWork) Rollback() error {
	err := u.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}

// LockAccounts takes row locks in id order. NO KEY UPDATE still lets other
// writers insert rows referencing these accounts.
func (u *unitOfWork) LockAccounts(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*ledger.Account, error) {
	locked := make(map[uuid.UUID]*ledger.Account, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
		FOR NO KEY UPDATE`

	rows, err := u.tx.QueryContext(ctx, query, owner, strIDs)
	if err != nil {
		return nil, database.Wrap("locking accounts", err)
	}
	defer rows.Close()

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		locked[acc.ID] = acc
	}

	if err := rows.Err(); err != nil {
		return nil, database.Wrap("locking accounts", err)
	}

	return locked, nil
}

func (u *unitOfWork) AdjustBalance(ctx context.Context, acc *ledger.Account, delta int64) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 AND version = $4
		RETURNING balance, version, updated_at
	`

	err := u.tx.QueryRowContext(ctx, query, delta, acc.ID, acc.OwnerID, acc.Version).
		Scan(&acc.Balance, &acc.Version, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("adjusting balance of %s: stale version %d: %w", acc.ID, acc.Version, ledger.ErrConflict)
	}

	return database.Wrap("adjusting balance", err)
}

// AdjustGoal never drives current_amount below zero, so reversing a linked
// income after the goal was lowered by hand does not round-trip.
func (u *unitOfWork) AdjustGoal(ctx context.Context, owner, id uuid.UUID, delta int64) error {
	query := `
		UPDATE goals
		SET current_amount = GREATEST(current_amount + $1, 0), updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING id
	`

	var got uuid.UUID

	return database.Wrap("adjusting goal", u.tx.QueryRowContext(ctx, query, delta, id, owner).Scan(&got))
}

func (u *unitOfWork) GetCategory(ctx context.Context, owner, id uuid.UUID) (*ledger.Category, error) {
	query := `
		SELECT id, owner_id, name, description, type, color, icon, is_active, created_at, updated_at
		FROM categories
		WHERE id = $1 AND owner_id = $2
	`

	var c ledger.Category

	var typeStr string

	err := u.tx.QueryRowContext(ctx, query, id, owner).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Description, &typeStr, &c.Color, &c.Icon, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.Wrap("getting category", err)
	}

	c.Type = ledger.Type(typeStr)

	return &c, nil
}

func (u *unitOfWork) GetCreditCard(ctx context.Context, owner, id uuid.UUID) (*ledger.CreditCard, error) {
	query := `
		SELECT id, owner_id, name, credit_limit, closing_day, due_day, is_active, created_at, updated_at
		FROM credit_cards
		WHERE id = $1 AND owner_id = $2
	`

	var c ledger.CreditCard

	err := u.tx.QueryRowContext(ctx, query, id, owner).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Limit, &c.ClosingDay, &c.DueDay, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.Wrap("getting credit card", err)
	}

	return &c, nil
}

func (u *unitOfWork) GetTransactionForUpdate(ctx context.Context, owner, id uuid.UUID) (*ledger.Transaction, error) {
	return getTransaction(ctx, u.tx, owner, id, true)
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, t *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (
			owner_id, description, amount, type, date, is_paid, installments, current_installment,
			category_id, account_id, credit_card_id, goal_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		t.OwnerID,
		t.Description,
		t.Amount,
		t.Type,
		t.Date,
		t.IsPaid,
		t.Installments,
		t.CurrentInstallment,
		t.CategoryID,
		t.AccountID,
		t.CreditCardID,
		t.GoalID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return database.Wrap("inserting transaction", err)
}

func (u *unitOfWork) UpdateTransaction(ctx context.Context, t *ledger.Transaction) error {
	query := `
		UPDATE transactions
		SET description = $1, amount = $2, type = $3, date = $4, is_paid = $5, installments = $6,
			current_installment = $7, category_id = $8, account_id = $9, credit_card_id = $10,
			goal_id = $11, updated_at = NOW()
		WHERE id = $12 AND owner_id = $13
		RETURNING updated_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		t.Description,
		t.Amount,
		t.Type,
		t.Date,
		t.IsPaid,
		t.Installments,
		t.CurrentInstallment,
		t.CategoryID,
		t.AccountID,
		t.CreditCardID,
		t.GoalID,
		t.ID,
		t.OwnerID,
	).Scan(&t.UpdatedAt)

	return database.Wrap("updating transaction", err)
}

func (u *unitOfWork) DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error {
	res, err := u.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return database.Wrap("deleting transaction", err)
	}

	return requireRow(res, "deleting transaction")
}

func (u *unitOfWork) InsertTransfer(ctx context.Context, tr *ledger.Transfer) error {
	query := `
		INSERT INTO transfers (owner_id, from_account_id, to_account_id, amount, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := u.tx.QueryRowContext(ctx, query,
		tr.OwnerID,
		tr.FromAccountID,
		tr.ToAccountID,
		tr.Amount,
		tr.Description,
		tr.Date,
	).Scan(&tr.ID, &tr.CreatedAt)

	return database.Wrap("inserting transfer", err)
}
