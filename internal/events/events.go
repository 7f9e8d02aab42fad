// Package events carries notifications about committed ledger changes.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TransactionCreated    Type = "transaction.created"
	TransactionUpdated    Type = "transaction.updated"
	TransactionDeleted    Type = "transaction.deleted"
	TransactionDuplicated Type = "transaction.duplicated"
	TransactionsImported  Type = "transaction.imported"
	AccountChanged        Type = "account.changed"
	AccountTransfer       Type = "account.transfer"
	CardChanged           Type = "card.changed"
	CategoryChanged       Type = "category.changed"
	BudgetChanged         Type = "budget.changed"
	GoalChanged           Type = "goal.changed"
)

type Event struct {
	Type       Type      `json:"type"`
	OwnerID    uuid.UUID `json:"ownerId"`
	EntityID   uuid.UUID `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

func New(t Type, owner, entity uuid.UUID, data any) Event {
	return Event{
		Type:       t,
		OwnerID:    owner,
		EntityID:   entity,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher is notified after a change has been committed. Publishing never
// undoes the change.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Func adapts a plain function to a Publisher.
type Func func(ctx context.Context, e Event) error

func (f Func) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error

	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
