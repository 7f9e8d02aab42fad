package category

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// OtherName is the catch-all category created for each type.
const OtherName = "Other"

var defaults = []CreateParams{
	{Name: "Salary", Type: ledger.TypeIncome, Color: "#16a34a", Icon: "briefcase"},
	{Name: "Freelance", Type: ledger.TypeIncome, Color: "#0d9488", Icon: "laptop"},
	{Name: "Investments", Type: ledger.TypeIncome, Color: "#2563eb", Icon: "trending-up"},
	{Name: OtherName, Type: ledger.TypeIncome, Color: "#64748b", Icon: "plus-circle"},
	{Name: "Food", Type: ledger.TypeExpense, Color: "#ea580c", Icon: "utensils"},
	{Name: "Housing", Type: ledger.TypeExpense, Color: "#9333ea", Icon: "home"},
	{Name: "Transport", Type: ledger.TypeExpense, Color: "#0891b2", Icon: "car"},
	{Name: "Health", Type: ledger.TypeExpense, Color: "#dc2626", Icon: "heart"},
	{Name: "Education", Type: ledger.TypeExpense, Color: "#4f46e5", Icon: "book"},
	{Name: "Leisure", Type: ledger.TypeExpense, Color: "#db2777", Icon: "music"},
	{Name: OtherName, Type: ledger.TypeExpense, Color: "#64748b", Icon: "minus-circle"},
}

func defaultKey(name string, typ ledger.Type) string {
	return strings.ToLower(name) + "|" + string(typ)
}

// CreateDefaults creates whichever of the default categories the owner does
// not have yet and returns only the ones it created.
func (s *Service) CreateDefaults(ctx context.Context, owner uuid.UUID) ([]*ledger.Category, error) {
	existing, err := s.repo.ListCategories(ctx, owner)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[defaultKey(c.Name, c.Type)] = true
	}

	created := make([]*ledger.Category, 0, len(defaults))

	for _, p := range defaults {
		if have[defaultKey(p.Name, p.Type)] {
			continue
		}

		c, err := s.Create(ctx, owner, p)
		if err != nil {
			return nil, err
		}

		created = append(created, c)
	}

	return created, nil
}

// Fallback returns the owner's catch-all category of the given type, creating
// the default set first if needed.
func (s *Service) Fallback(ctx context.Context, owner uuid.UUID, typ ledger.Type) (uuid.UUID, error) {
	find := func(cats []*ledger.Category) uuid.UUID {
		for _, c := range cats {
			if c.Type == typ && c.IsActive && strings.EqualFold(c.Name, OtherName) {
				return c.ID
			}
		}

		return uuid.Nil
	}

	cats, err := s.repo.ListCategories(ctx, owner)
	if err != nil {
		return uuid.Nil, err
	}

	if id := find(cats); id != uuid.Nil {
		return id, nil
	}

	created, err := s.CreateDefaults(ctx, owner)
	if err != nil {
		return uuid.Nil, err
	}

	if id := find(created); id != uuid.Nil {
		return id, nil
	}

	return uuid.Nil, &ledger.ValidationError{Field: "categoryId", Message: "no active fallback category for " + string(typ)}
}
