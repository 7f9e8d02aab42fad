package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Begin(ctx context.Context) (Tx, error)

	CreateAccount(ctx context.Context, acc *Account) error
	GetAccount(ctx context.Context, owner, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, owner uuid.UUID) ([]*Account, error)
	// UpdateAccount writes name, type and isActive if acc.Version is still
	// current, and bumps the version. It never touches the balance.
	UpdateAccount(ctx context.Context, acc *Account) error
	DeleteAccount(ctx context.Context, owner, id uuid.UUID) error

	GetTransaction(ctx context.Context, owner, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]*Transaction, error)
}

// Tx is a single unit of work. Every balance change happens inside one.
type Tx interface {
	// LockAccounts locks the given accounts in ascending id order and returns
	// the ones that exist.
	LockAccounts(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Account, error)
	// AdjustBalance adds delta to the balance if acc.Version is current and
	// refreshes acc. A stale version yields ErrConflict.
	AdjustBalance(ctx context.Context, acc *Account, delta int64) error
	// AdjustGoal adds delta to the goal's current amount, clamping at zero.
	AdjustGoal(ctx context.Context, owner, id uuid.UUID, delta int64) error

	GetCategory(ctx context.Context, owner, id uuid.UUID) (*Category, error)
	GetCreditCard(ctx context.Context, owner, id uuid.UUID) (*CreditCard, error)

	GetTransactionForUpdate(ctx context.Context, owner, id uuid.UUID) (*Transaction, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error
	InsertTransfer(ctx context.Context, tr *Transfer) error

	Commit() error
	Rollback() error
}

// maxAttempts bounds how often a unit of work is retried after ErrConflict.
const maxAttempts = 3

type Service struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Description        string
	Amount             int64
	Type               Type
	Date               time.Time
	IsPaid             bool
	Installments       *int
	CurrentInstallment *int
	CategoryID         uuid.UUID
	AccountID          *uuid.UUID
	CreditCardID       *uuid.UUID
	GoalID             *uuid.UUID
}

// Ref changes a nullable reference. Set with a nil ID clears it.
type Ref struct {
	Set bool
	ID  *uuid.UUID
}

type UpdateParams struct {
	Description        *string
	Amount             *int64
	Type               *Type
	Date               *time.Time
	IsPaid             *bool
	Installments       *int
	CurrentInstallment *int
	CategoryID         *uuid.UUID
	AccountID          Ref
	CreditCardID       Ref
	GoalID             Ref
}

type ListFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	AccountID    *uuid.UUID
	CreditCardID *uuid.UUID
	Type         *Type
}

func (p CreateParams) transaction(owner uuid.UUID) *Transaction {
	t := &Transaction{
		OwnerID:            owner,
		Description:        p.Description,
		Amount:             p.Amount,
		Type:               p.Type,
		Date:               DateOnly(p.Date),
		IsPaid:             p.IsPaid,
		Installments:       p.Installments,
		CurrentInstallment: p.CurrentInstallment,
		CategoryID:         p.CategoryID,
		AccountID:          p.AccountID,
		CreditCardID:       p.CreditCardID,
		GoalID:             p.GoalID,
	}

	// Callers may reuse params across retries; never share their pointers.
	return t.Clone()
}

func (p UpdateParams) applyTo(t *Transaction) {
	if p.Description != nil {
		t.Description = *p.Description
	}

	if p.Amount != nil {
		t.Amount = *p.Amount
	}

	if p.Type != nil {
		t.Type = *p.Type
	}

	if p.Date != nil {
		t.Date = DateOnly(*p.Date)
	}

	if p.IsPaid != nil {
		t.IsPaid = *p.IsPaid
	}

	if p.Installments != nil {
		t.Installments = new(*p.Installments)
	}

	if p.CurrentInstallment != nil {
		t.CurrentInstallment = new(*p.CurrentInstallment)
	}

	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}

	if p.AccountID.Set {
		t.AccountID = clonePtr(p.AccountID.ID)
	}

	if p.CreditCardID.Set {
		t.CreditCardID = clonePtr(p.CreditCardID.ID)
	}

	if p.GoalID.Set {
		t.GoalID = clonePtr(p.GoalID.ID)
	}
}

func (s *Service) CreateTransaction(ctx context.Context, owner uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.transaction(owner).Validate(); err != nil {
		return nil, err
	}

	var created *Transaction

	err := s.inTx(ctx, func(tx Tx) error {
		t := params.transaction(owner)
		if err := s.apply(ctx, tx, owner, nil, t); err != nil {
			return err
		}

		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}

		created = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.TransactionCreated, owner, created.ID, nil))

	return created, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, owner, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	var updated *Transaction

	err := s.inTx(ctx, func(tx Tx) error {
		old, err := tx.GetTransactionForUpdate(ctx, owner, id)
		if err != nil {
			return err
		}

		next := old.Clone()
		params.applyTo(next)

		if err := next.Validate(); err != nil {
			return err
		}

		if err := s.apply(ctx, tx, owner, old, next); err != nil {
			return err
		}

		if err := tx.UpdateTransaction(ctx, next); err != nil {
			return err
		}

		updated = next

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.TransactionUpdated, owner, id, nil))

	return updated, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error {
	err := s.inTx(ctx, func(tx Tx) error {
		old, err := tx.GetTransactionForUpdate(ctx, owner, id)
		if err != nil {
			return err
		}

		if err := s.apply(ctx, tx, owner, old, nil); err != nil {
			return err
		}

		return tx.DeleteTransaction(ctx, owner, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.New(events.TransactionDeleted, owner, id, nil))

	return nil
}

// DuplicateTransaction copies a transaction under a new id with isPaid reset
// and applies the copy to the ledger once. The source is left untouched.
func (s *Service) DuplicateTransaction(ctx context.Context, owner, id uuid.UUID) (*Transaction, error) {
	var dup *Transaction

	err := s.inTx(ctx, func(tx Tx) error {
		src, err := tx.GetTransactionForUpdate(ctx, owner, id)
		if err != nil {
			return err
		}

		t := src.Clone()
		t.ID = uuid.Nil
		t.IsPaid = false

		if err := s.apply(ctx, tx, owner, nil, t); err != nil {
			return err
		}

		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}

		dup = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.TransactionDuplicated, owner, dup.ID, map[string]uuid.UUID{"sourceId": id}))

	return dup, nil
}

// TogglePaid flips the paid flag. It has no balance effect.
func (s *Service) TogglePaid(ctx context.Context, owner, id uuid.UUID) (*Transaction, error) {
	var toggled *Transaction

	err := s.inTx(ctx, func(tx Tx) error {
		t, err := tx.GetTransactionForUpdate(ctx, owner, id)
		if err != nil {
			return err
		}

		t.IsPaid = !t.IsPaid
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return err
		}

		toggled = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.TransactionUpdated, owner, id, nil))

	return toggled, nil
}

// ImportBatch creates all transactions in one unit of work: either every row
// lands or none does.
func (s *Service) ImportBatch(ctx context.Context, owner uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i, p := range params {
		if err := p.transaction(owner).Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	var created []*Transaction

	err := s.inTx(ctx, func(tx Tx) error {
		created = make([]*Transaction, 0, len(params))

		txs := make([]*Transaction, len(params))
		for i, p := range params {
			txs[i] = p.transaction(owner)
		}

		// Take every account lock up front so rows cannot interleave lock order.
		if _, err := tx.LockAccounts(ctx, owner, accountRefs(txs...)); err != nil {
			return err
		}

		for i, t := range txs {
			if err := s.apply(ctx, tx, owner, nil, t); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}

			if err := tx.InsertTransaction(ctx, t); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}

			created = append(created, t)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.TransactionsImported, owner, uuid.Nil, map[string]int{"count": len(created)}))

	return created, nil
}

func (s *Service) GetTransaction(ctx context.Context, owner, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, owner, id)
}

func (s *Service) ListTransactions(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, owner, filter)
}

// apply checks the references of next and moves every affected balance from
// the state implied by old to the one implied by next.
func (s *Service) apply(ctx context.Context, tx Tx, owner uuid.UUID, old, next *Transaction) error {
	if next != nil {
		if err := checkReferences(ctx, tx, owner, next); err != nil {
			return err
		}
	}

	accountDeltas, goalDeltas := deltas(old, next)

	locked, err := tx.LockAccounts(ctx, owner, accountRefs(old, next))
	if err != nil {
		return err
	}

	if next != nil && next.AccountID != nil {
		if _, ok := locked[*next.AccountID]; !ok {
			return invalid("accountId", "account not found")
		}
	}

	for _, id := range keys(accountDeltas) {
		acc, ok := locked[id]
		if !ok {
			return fmt.Errorf("account %s: %w", id, ErrNotFound)
		}

		if err := tx.AdjustBalance(ctx, acc, accountDeltas[id]); err != nil {
			return err
		}
	}

	if next != nil && next.GoalID != nil {
		if _, ok := goalDeltas[*next.GoalID]; !ok {
			// Zero delta still proves the goal exists.
			goalDeltas[*next.GoalID] = 0
		}
	}

	for _, id := range keys(goalDeltas) {
		err := tx.AdjustGoal(ctx, owner, id, goalDeltas[id])
		if errors.Is(err, ErrNotFound) && next != nil && next.GoalID != nil && *next.GoalID == id {
			return invalid("goalId", "goal not found")
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func checkReferences(ctx context.Context, tx Tx, owner uuid.UUID, t *Transaction) error {
	cat, err := tx.GetCategory(ctx, owner, t.CategoryID)
	if errors.Is(err, ErrNotFound) {
		return invalid("categoryId", "category not found")
	}

	if err != nil {
		return err
	}

	if cat.Type != t.Type {
		return invalid("categoryId", fmt.Sprintf("category type %s does not match transaction type %s", cat.Type, t.Type))
	}

	if t.CreditCardID != nil {
		_, err := tx.GetCreditCard(ctx, owner, *t.CreditCardID)
		if errors.Is(err, ErrNotFound) {
			return invalid("creditCardId", "credit card not found")
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// inTx runs fn in a fresh unit of work, retrying when a concurrent writer got
// there first. fn must build all of its state from scratch on every call.
func (s *Service) inTx(ctx context.Context, fn func(tx Tx) error) error {
	return retry(ctx, func() error {
		tx, err := s.repo.Begin(ctx)
		if err != nil {
			return fmt.Errorf("beginning unit of work: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing unit of work: %w", err)
		}

		return nil
	})
}

func retry(ctx context.Context, fn func() error) error {
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}

		if ctx.Err() != nil {
			return err
		}

		slog.WarnContext(ctx, "retrying after conflict", "attempt", attempt, "error", err)
	}

	return err
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", e.Type, "error", err)
	}
}
