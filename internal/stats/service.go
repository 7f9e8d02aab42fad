package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/pennywise/internal/billing"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

const (
	DefaultExpiration = 5 * time.Minute
	CleanupInterval   = 10 * time.Minute

	upcomingGoals = 5
)

const (
	ckAccountStats     = "account_stats_%s"
	ckTransactionStats = "transaction_stats_%s"
	ckDashboard        = "dashboard_%s"
)

//go:generate mockgen -source=service.go -destination=sources_mock.go -package=stats
type LedgerReader interface {
	ListAccounts(ctx context.Context, owner uuid.UUID) ([]*ledger.Account, error)
	ListTransactions(ctx context.Context, owner uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
}

type CategoryLister interface {
	ListCategories(ctx context.Context, owner uuid.UUID) ([]*ledger.Category, error)
}

type CardSummarizer interface {
	AllStats(ctx context.Context, owner uuid.UUID) ([]*billing.Stats, error)
}

type BudgetFinder interface {
	GetByMonth(ctx context.Context, owner uuid.UUID, month, year int) (*budget.Budget, error)
}

type GoalLister interface {
	Upcoming(ctx context.Context, owner uuid.UUID, limit int) ([]*goal.View, error)
}

// Sources are the services the aggregates are read from.
type Sources struct {
	Ledger     LedgerReader
	Categories CategoryLister
	Cards      CardSummarizer
	Budgets    BudgetFinder
	Goals      GoalLister
}

type Dashboard struct {
	TotalBalance   int64
	MonthIncome    int64
	MonthExpense   int64
	Cards          []*billing.Stats
	Budget         *budget.Budget
	BudgetProgress *budget.Progress
	UpcomingGoals  []*goal.View
}

// Service caches aggregates per owner. It is also an events.Publisher so that
// every committed change drops the owner's entries.
type Service struct {
	src   Sources
	cache *cache.Cache
	now   func() time.Time
}

func NewService(src Sources, c *cache.Cache) *Service {
	if c == nil {
		c = cache.New(DefaultExpiration, CleanupInterval)
	}

	return &Service{src: src, cache: c, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Accounts(ctx context.Context, owner uuid.UUID) (*AccountStats, error) {
	return cached(s, fmt.Sprintf(ckAccountStats, owner), func() (*AccountStats, error) {
		accs, err := s.src.Ledger.ListAccounts(ctx, owner)
		if err != nil {
			return nil, err
		}

		st := ComputeAccountStats(accs)

		return &st, nil
	})
}

func (s *Service) Transactions(ctx context.Context, owner uuid.UUID) (*TransactionStats, error) {
	return cached(s, fmt.Sprintf(ckTransactionStats, owner), func() (*TransactionStats, error) {
		var (
			txs  []*ledger.Transaction
			cats []*ledger.Category
		)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			txs, err = s.src.Ledger.ListTransactions(gctx, owner, ledger.ListFilter{})
			return err
		})
		g.Go(func() (err error) {
			cats, err = s.src.Categories.ListCategories(gctx, owner)
			return err
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}

		st := ComputeTransactionStats(txs, cats, s.now())

		return &st, nil
	})
}

func (s *Service) Dashboard(ctx context.Context, owner uuid.UUID) (*Dashboard, error) {
	return cached(s, fmt.Sprintf(ckDashboard, owner), func() (*Dashboard, error) {
		today := s.now()
		start, end := budget.MonthRange(int(today.Month()), today.Year())

		var (
			d    Dashboard
			accs []*ledger.Account
			txs  []*ledger.Transaction
		)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() (err error) {
			accs, err = s.src.Ledger.ListAccounts(gctx, owner)
			return err
		})
		g.Go(func() (err error) {
			txs, err = s.src.Ledger.ListTransactions(gctx, owner, ledger.ListFilter{StartDate: &start, EndDate: &end})
			return err
		})
		g.Go(func() (err error) {
			d.Cards, err = s.src.Cards.AllStats(gctx, owner)
			return err
		})
		g.Go(func() error {
			b, err := s.src.Budgets.GetByMonth(gctx, owner, int(today.Month()), today.Year())
			if errors.Is(err, ledger.ErrNotFound) {
				return nil
			}

			if err != nil {
				return err
			}

			p := budget.ComputeProgress(b)
			d.Budget, d.BudgetProgress = b, &p

			return nil
		})
		g.Go(func() (err error) {
			d.UpcomingGoals, err = s.src.Goals.Upcoming(gctx, owner, upcomingGoals)
			return err
		})

		if err := g.Wait(); err != nil {
			return nil, err
		}

		d.TotalBalance = ComputeAccountStats(accs).TotalBalance

		for _, t := range txs {
			if t.Type == ledger.TypeIncome {
				d.MonthIncome += t.Amount
			} else {
				d.MonthExpense += t.Amount
			}
		}

		return &d, nil
	})
}

// Invalidate drops every cached aggregate of the owner.
func (s *Service) Invalidate(owner uuid.UUID) {
	for _, key := range []string{
		fmt.Sprintf(ckAccountStats, owner),
		fmt.Sprintf(ckTransactionStats, owner),
		fmt.Sprintf(ckDashboard, owner),
	} {
		s.cache.Delete(key)
	}
}

func (s *Service) Publish(ctx context.Context, e events.Event) error {
	s.Invalidate(e.OwnerID)
	slog.DebugContext(ctx, "stats cache invalidated", "owner", e.OwnerID, "event", e.Type)

	return nil
}

func cached[T any](s *Service, key string, load func() (*T, error)) (*T, error) {
	if v, found := s.cache.Get(key); found {
		if res, ok := v.(*T); ok {
			return res, nil
		}
	}

	res, err := load()
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, res, cache.DefaultExpiration)

	return res, nil
}
