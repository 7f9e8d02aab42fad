package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=billing
type Repository interface {
	CreateCard(ctx context.Context, card *ledger.CreditCard) error
	GetCard(ctx context.Context, owner, id uuid.UUID) (*ledger.CreditCard, error)
	ListCards(ctx context.Context, owner uuid.UUID) ([]*ledger.CreditCard, error)
	UpdateCard(ctx context.Context, card *ledger.CreditCard) error
	// DeleteCard fails with ErrConflict while transactions reference the card.
	DeleteCard(ctx context.Context, owner, id uuid.UUID) error
}

type TransactionLister interface {
	ListTransactions(ctx context.Context, owner uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
}

type Service struct {
	repo      Repository
	txs       TransactionLister
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, txs TransactionLister, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &Service{repo: repo, txs: txs, publisher: publisher, now: time.Now}
}

// WithClock replaces the source of "today" used for statement periods.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateParams struct {
	Name       string
	Limit      int64
	ClosingDay int
	DueDay     int
}

type UpdateParams struct {
	Name       *string
	Limit      *int64
	ClosingDay *int
	DueDay     *int
	IsActive   *bool
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, params CreateParams) (*ledger.CreditCard, error) {
	card := &ledger.CreditCard{
		OwnerID:    owner,
		Name:       params.Name,
		Limit:      params.Limit,
		ClosingDay: params.ClosingDay,
		DueDay:     params.DueDay,
		IsActive:   true,
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, card.ID)

	return card, nil
}

func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*ledger.CreditCard, error) {
	return s.repo.GetCard(ctx, owner, id)
}

func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]*ledger.CreditCard, error) {
	return s.repo.ListCards(ctx, owner)
}

func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, params UpdateParams) (*ledger.CreditCard, error) {
	card, err := s.repo.GetCard(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		card.Name = *params.Name
	}

	if params.Limit != nil {
		card.Limit = *params.Limit
	}

	if params.ClosingDay != nil {
		card.ClosingDay = *params.ClosingDay
	}

	if params.DueDay != nil {
		card.DueDay = *params.DueDay
	}

	if params.IsActive != nil {
		card.IsActive = *params.IsActive
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCard(ctx, card); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, id)

	return card, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteCard(ctx, owner, id); err != nil {
		return err
	}

	s.publish(ctx, owner, id)

	return nil
}

// Stats summarises the card's current statement period.
func (s *Service) Stats(ctx context.Context, owner, id uuid.UUID) (*Stats, error) {
	card, err := s.repo.GetCard(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	return s.summarize(ctx, owner, card)
}

// AllStats summarises every active card of the owner.
func (s *Service) AllStats(ctx context.Context, owner uuid.UUID) ([]*Stats, error) {
	cards, err := s.repo.ListCards(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := make([]*Stats, 0, len(cards))

	for _, card := range cards {
		if !card.IsActive {
			continue
		}

		st, err := s.summarize(ctx, owner, card)
		if err != nil {
			return nil, err
		}

		out = append(out, st)
	}

	return out, nil
}

func (s *Service) summarize(ctx context.Context, owner uuid.UUID, card *ledger.CreditCard) (*Stats, error) {
	today := s.now()
	cycle := CurrentCycle(card.ClosingDay, card.DueDay, today)

	txs, err := s.txs.ListTransactions(ctx, owner, ledger.ListFilter{
		StartDate:    &cycle.Start,
		EndDate:      &cycle.End,
		CreditCardID: &card.ID,
		Type:         new(ledger.TypeExpense),
	})
	if err != nil {
		return nil, err
	}

	st := Summarize(card, txs, today)

	return &st, nil
}

func (s *Service) publish(ctx context.Context, owner, id uuid.UUID) {
	if err := s.publisher.Publish(ctx, events.New(events.CardChanged, owner, id, nil)); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", events.CardChanged, "error", err)
	}
}
