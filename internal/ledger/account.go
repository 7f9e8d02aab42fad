package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
)

type CreateAccountParams struct {
	Name           string
	Type           AccountType
	OpeningBalance int64
}

type UpdateAccountParams struct {
	Name     *string
	Type     *AccountType
	IsActive *bool
	// Balance is rejected when set: balances only move through transactions
	// and transfers.
	Balance *int64
}

func (s *Service) CreateAccount(ctx context.Context, owner uuid.UUID, params CreateAccountParams) (*Account, error) {
	acc := &Account{
		OwnerID:  owner,
		Name:     params.Name,
		Type:     params.Type,
		Balance:  params.OpeningBalance,
		IsActive: true,
	}
	if err := acc.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.AccountChanged, owner, acc.ID, nil))

	return acc, nil
}

func (s *Service) GetAccount(ctx context.Context, owner, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, owner, id)
}

func (s *Service) ListAccounts(ctx context.Context, owner uuid.UUID) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, owner)
}

func (s *Service) UpdateAccount(ctx context.Context, owner, id uuid.UUID, params UpdateAccountParams) (*Account, error) {
	if params.Balance != nil {
		return nil, invalid("balance", "can only change through transactions and transfers")
	}

	var acc *Account

	err := retry(ctx, func() error {
		var err error

		acc, err = s.repo.GetAccount(ctx, owner, id)
		if err != nil {
			return err
		}

		if params.Name != nil {
			acc.Name = *params.Name
		}

		if params.Type != nil {
			acc.Type = *params.Type
		}

		if params.IsActive != nil {
			acc.IsActive = *params.IsActive
		}

		if err := acc.Validate(); err != nil {
			return err
		}

		return s.repo.UpdateAccount(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.AccountChanged, owner, id, nil))

	return acc, nil
}

// DeleteAccount fails with ErrConflict while any transaction or transfer
// still references the account.
func (s *Service) DeleteAccount(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteAccount(ctx, owner, id); err != nil {
		return err
	}

	s.publish(ctx, events.New(events.AccountChanged, owner, id, nil))

	return nil
}
