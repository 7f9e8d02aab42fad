package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/importer/cgd"
	"github.com/MrJamesThe3rd/pennywise/internal/importer/statement"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer

type Ledger interface {
	ImportBatch(ctx context.Context, owner uuid.UUID, params []ledger.CreateParams) ([]*ledger.Transaction, error)
}

type Categorizer interface {
	Suggest(ctx context.Context, owner uuid.UUID, description string, typ ledger.Type) (uuid.UUID, error)
	Fallback(ctx context.Context, owner uuid.UUID, typ ledger.Type) (uuid.UUID, error)
}

type Service struct {
	ledger     Ledger
	categories Categorizer
	parsers    map[Bank]Parser
}

func NewService(l Ledger, c Categorizer) *Service {
	return &Service{
		ledger:     l,
		categories: c,
		parsers: map[Bank]Parser{
			BankCGD: cgd.NewParser(),
		},
	}
}

// WithParser registers p for bank, replacing any existing parser.
func (s *Service) WithParser(bank Bank, p Parser) *Service {
	s.parsers[bank] = p
	return s
}

// Params says where imported rows land. Exactly one of AccountID and
// CreditCardID must be set.
type Params struct {
	Bank              Bank
	AccountID         *uuid.UUID
	CreditCardID      *uuid.UUID
	IncomeCategoryID  *uuid.UUID
	ExpenseCategoryID *uuid.UUID
	MarkPaid          bool
}

func (p Params) validate() error {
	if (p.AccountID == nil) == (p.CreditCardID == nil) {
		return &ledger.ValidationError{Field: "accountId", Message: "exactly one of accountId or creditCardId is required"}
	}

	return nil
}

type Result struct {
	Imported     int
	Skipped      int
	Transactions []*ledger.Transaction
}

// Preview parses the statement and resolves categories without writing
// anything. Skipped counts rows a credit card cannot take (incomes).
func (s *Service) Preview(ctx context.Context, owner uuid.UUID, params Params, r io.Reader) ([]ledger.CreateParams, int, error) {
	if err := params.validate(); err != nil {
		return nil, 0, err
	}

	parser, ok := s.parsers[params.Bank]
	if !ok {
		return nil, 0, &ledger.ValidationError{Field: "bank", Message: "unsupported bank"}
	}

	lines, err := parser.Parse(r)
	if err != nil {
		return nil, 0, &ledger.ValidationError{Field: "file", Message: err.Error()}
	}

	res := &resolver{svc: s, owner: owner, params: params, fallback: map[ledger.Type]uuid.UUID{}}

	rows := make([]ledger.CreateParams, 0, len(lines))
	skipped := 0

	for _, line := range lines {
		if params.CreditCardID != nil && line.Type == ledger.TypeIncome {
			skipped++
			continue
		}

		categoryID, err := res.category(ctx, line)
		if err != nil {
			return nil, 0, err
		}

		rows = append(rows, ledger.CreateParams{
			Description:  line.Description,
			Amount:       line.Amount,
			Type:         line.Type,
			Date:         line.Date,
			IsPaid:       params.MarkPaid,
			CategoryID:   categoryID,
			AccountID:    params.AccountID,
			CreditCardID: params.CreditCardID,
		})
	}

	return rows, skipped, nil
}

// Import applies every parsed row in one batch.
func (s *Service) Import(ctx context.Context, owner uuid.UUID, params Params, r io.Reader) (*Result, error) {
	rows, skipped, err := s.Preview(ctx, owner, params, r)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, &ledger.ValidationError{Field: "file", Message: "no transactions found"}
	}

	created, err := s.ledger.ImportBatch(ctx, owner, rows)
	if err != nil {
		return nil, fmt.Errorf("importing statement: %w", err)
	}

	slog.InfoContext(ctx, "statement imported", "bank", params.Bank, "imported", len(created), "skipped", skipped)

	return &Result{
		Imported:     len(created),
		Skipped:      skipped,
		Transactions: created,
	}, nil
}

type resolver struct {
	svc      *Service
	owner    uuid.UUID
	params   Params
	fallback map[ledger.Type]uuid.UUID
}

// category tries learned rules, then the per-type default from the
// request, then the owner's "Other" category.
func (r *resolver) category(ctx context.Context, line statement.Line) (uuid.UUID, error) {
	id, err := r.svc.categories.Suggest(ctx, r.owner, line.Description, line.Type)
	if err != nil {
		return uuid.Nil, fmt.Errorf("suggesting category: %w", err)
	}

	if id != uuid.Nil {
		return id, nil
	}

	if def := r.params.defaultFor(line.Type); def != nil {
		return *def, nil
	}

	if id, ok := r.fallback[line.Type]; ok {
		return id, nil
	}

	id, err = r.svc.categories.Fallback(ctx, r.owner, line.Type)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving fallback category: %w", err)
	}

	r.fallback[line.Type] = id

	return id, nil
}

func (p Params) defaultFor(typ ledger.Type) *uuid.UUID {
	if typ == ledger.TypeIncome {
		return p.IncomeCategoryID
	}

	return p.ExpenseCategoryID
}
