package budget

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	// CreateBudget fails with ErrConflict when the owner already has a budget
	// for that month.
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, owner, id uuid.UUID) (*Budget, error)
	GetBudgetByMonth(ctx context.Context, owner uuid.UUID, month, year int) (*Budget, error)
	ListBudgets(ctx context.Context, owner uuid.UUID, year *int) ([]*Budget, error)
	// UpdateBudget replaces the budget row and all of its items.
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, owner, id uuid.UUID) error
}

type TransactionLister interface {
	ListTransactions(ctx context.Context, owner uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
}

type Service struct {
	repo      Repository
	txs       TransactionLister
	publisher events.Publisher
}

func NewService(repo Repository, txs TransactionLister, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &Service{repo: repo, txs: txs, publisher: publisher}
}

type ItemParams struct {
	CategoryID uuid.UUID
	Planned    int64
}

type CreateParams struct {
	Name   string
	Month  int
	Year   int
	Amount int64
	Items  []ItemParams
}

type UpdateParams struct {
	Name   *string
	Amount *int64
	// Items replaces the whole item list when non-nil.
	Items *[]ItemParams
}

func toItems(params []ItemParams) []Item {
	items := make([]Item, len(params))
	for i, p := range params {
		items[i] = Item{CategoryID: p.CategoryID, Planned: p.Planned}
	}

	return items
}

// Create stores a budget with spent figures already computed from the
// month's transactions.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, params CreateParams) (*Budget, error) {
	b := &Budget{
		OwnerID: owner,
		Name:    params.Name,
		Month:   params.Month,
		Year:    params.Year,
		Amount:  params.Amount,
		Items:   toItems(params.Items),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, b); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, b.ID)

	return b, nil
}

func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, owner, id)
}

func (s *Service) GetByMonth(ctx context.Context, owner uuid.UUID, month, year int) (*Budget, error) {
	if month < 1 || month > 12 {
		return nil, &ledger.ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}

	return s.repo.GetBudgetByMonth(ctx, owner, month, year)
}

func (s *Service) List(ctx context.Context, owner uuid.UUID, year *int) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx, owner, year)
}

func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, params UpdateParams) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		b.Name = *params.Name
	}

	if params.Amount != nil {
		b.Amount = *params.Amount
	}

	if params.Items != nil {
		b.Items = toItems(*params.Items)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, b); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, id)

	return b, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteBudget(ctx, owner, id); err != nil {
		return err
	}

	s.publish(ctx, owner, id)

	return nil
}

// RefreshSpent recomputes and stores the spent figures of the month's budget.
func (s *Service) RefreshSpent(ctx context.Context, owner uuid.UUID, month, year int) (*Budget, error) {
	b, err := s.GetByMonth(ctx, owner, month, year)
	if err != nil {
		return nil, err
	}

	if err := s.recompute(ctx, b); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) recompute(ctx context.Context, b *Budget) error {
	start, end := MonthRange(b.Month, b.Year)

	txs, err := s.txs.ListTransactions(ctx, b.OwnerID, ledger.ListFilter{
		StartDate: &start,
		EndDate:   &end,
		Type:      new(ledger.TypeExpense),
	})
	if err != nil {
		return err
	}

	b.Apply(txs)

	return nil
}

func (s *Service) publish(ctx context.Context, owner, id uuid.UUID) {
	if err := s.publisher.Publish(ctx, events.New(events.BudgetChanged, owner, id, nil)); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", events.BudgetChanged, "error", err)
	}
}
