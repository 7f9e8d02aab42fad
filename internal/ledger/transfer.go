package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
)

const defaultTransferDescription = "Transfer between accounts"

type TransferParams struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        int64
	Description   string
	Date          time.Time
}

type TransferResult struct {
	From        *Account
	To          *Account
	Amount      int64
	Description string
}

// Transfer debits one account and credits another in a single unit of work.
// If the source balance does not cover the amount, neither account changes
// and ErrInsufficientBalance is returned.
func (s *Service) Transfer(ctx context.Context, owner uuid.UUID, params TransferParams) (*TransferResult, error) {
	if params.FromAccountID == uuid.Nil {
		return nil, invalid("fromAccountId", "is required")
	}

	if params.ToAccountID == uuid.Nil {
		return nil, invalid("toAccountId", "is required")
	}

	if params.FromAccountID == params.ToAccountID {
		return nil, invalid("toAccountId", "must differ from the source account")
	}

	if params.Amount <= 0 {
		return nil, invalid("amount", "must be greater than zero")
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = defaultTransferDescription
	}

	date := params.Date
	if date.IsZero() {
		date = s.now()
	}

	var result *TransferResult

	err := s.inTx(ctx, func(tx Tx) error {
		locked, err := tx.LockAccounts(ctx, owner, sortedIDs([]uuid.UUID{params.FromAccountID, params.ToAccountID}))
		if err != nil {
			return err
		}

		from, ok := locked[params.FromAccountID]
		if !ok {
			return fmt.Errorf("source account: %w", ErrNotFound)
		}

		to, ok := locked[params.ToAccountID]
		if !ok {
			return fmt.Errorf("destination account: %w", ErrNotFound)
		}

		if from.Balance < params.Amount {
			return ErrInsufficientBalance
		}

		if err := tx.AdjustBalance(ctx, from, -params.Amount); err != nil {
			return err
		}

		if err := tx.AdjustBalance(ctx, to, params.Amount); err != nil {
			return err
		}

		err = tx.InsertTransfer(ctx, &Transfer{
			OwnerID:       owner,
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        params.Amount,
			Description:   description,
			Date:          DateOnly(date),
		})
		if err != nil {
			return err
		}

		result = &TransferResult{From: from, To: to, Amount: params.Amount, Description: description}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.AccountTransfer, owner, params.FromAccountID, map[string]any{
		"toAccountId": params.ToAccountID,
		"amount":      params.Amount,
	}))

	return result, nil
}
