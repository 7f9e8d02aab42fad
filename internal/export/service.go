// Package export writes transactions out as CSV for spreadsheets.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
)

//go:generate mockgen -source=service.go -destination=sources_mock.go -package=export

type TransactionLister interface {
	ListTransactions(ctx context.Context, owner uuid.UUID, filter ledger.ListFilter) ([]*ledger.Transaction, error)
	ListAccounts(ctx context.Context, owner uuid.UUID) ([]*ledger.Account, error)
}

type CategoryLister interface {
	ListCategories(ctx context.Context, owner uuid.UUID) ([]*ledger.Category, error)
}

type CardLister interface {
	List(ctx context.Context, owner uuid.UUID) ([]*ledger.CreditCard, error)
}

var header = []string{"date", "description", "type", "amount", "paid", "category", "account", "credit_card", "installment"}

// Service handles the export of transactions.
type Service struct {
	ledger     TransactionLister
	categories CategoryLister
	cards      CardLister
}

func NewService(l TransactionLister, c CategoryLister, cards CardLister) *Service {
	return &Service{
		ledger:     l,
		categories: c,
		cards:      cards,
	}
}

// WriteCSV writes the transactions matching filter to w and returns how
// many rows were written.
func (s *Service) WriteCSV(ctx context.Context, owner uuid.UUID, filter query.TransactionFilter, w io.Writer) (int, error) {
	var (
		txs   []*ledger.Transaction
		names = map[uuid.UUID]string{}
		cats  []*ledger.Category
		accs  []*ledger.Account
		cards []*ledger.CreditCard
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		txs, err = s.ledger.ListTransactions(gctx, owner, filter.Store())
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error
		cats, err = s.categories.ListCategories(gctx, owner)
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error
		accs, err = s.ledger.ListAccounts(gctx, owner)
		if err != nil {
			return fmt.Errorf("listing accounts: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error
		cards, err = s.cards.List(gctx, owner)
		if err != nil {
			return fmt.Errorf("listing credit cards: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}

	txs = query.Transactions(txs, filter)

	for _, c := range cats {
		names[c.ID] = c.Name
	}

	for _, a := range accs {
		names[a.ID] = a.Name
	}

	for _, c := range cards {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, t := range txs {
		if err := cw.Write(record(t, names)); err != nil {
			return 0, fmt.Errorf("writing transaction %s: %w", t.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(txs), nil
}

func record(t *ledger.Transaction, names map[uuid.UUID]string) []string {
	return []string{
		t.Date.Format(time.DateOnly),
		escapeFormula(t.Description),
		string(t.Type),
		money.Amount(t.Amount).String(),
		strconv.FormatBool(t.IsPaid),
		escapeFormula(names[t.CategoryID]),
		escapeFormula(refName(t.AccountID, names)),
		escapeFormula(refName(t.CreditCardID, names)),
		installment(t),
	}
}

func refName(id *uuid.UUID, names map[uuid.UUID]string) string {
	if id == nil {
		return ""
	}

	return names[*id]
}

func installment(t *ledger.Transaction) string {
	if t.Installments == nil || t.CurrentInstallment == nil {
		return ""
	}

	return fmt.Sprintf("%d/%d", *t.CurrentInstallment, *t.Installments)
}

// escapeFormula prefixes a quote on cells a spreadsheet would evaluate.
func escapeFormula(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}

	return s
}
