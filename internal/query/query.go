// Package query filters, sorts and pages in-memory ledger collections.
package query

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// TransactionFilter combines its set fields with AND. Dates are inclusive
// calendar days and amounts are inclusive bounds in cents.
type TransactionFilter struct {
	Type         *ledger.Type
	CategoryID   *uuid.UUID
	AccountID    *uuid.UUID
	CreditCardID *uuid.UUID
	Search       *string
	IsPaid       *bool
	StartDate    *time.Time
	EndDate      *time.Time
	MinAmount    *int64
	MaxAmount    *int64
}

func (f TransactionFilter) Match(t *ledger.Transaction) bool {
	if f.Type != nil && t.Type != *f.Type {
		return false
	}

	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}

	if f.AccountID != nil && (t.AccountID == nil || *t.AccountID != *f.AccountID) {
		return false
	}

	if f.CreditCardID != nil && (t.CreditCardID == nil || *t.CreditCardID != *f.CreditCardID) {
		return false
	}

	if f.Search != nil && !containsFold(t.Description, *f.Search) {
		return false
	}

	if f.IsPaid != nil && t.IsPaid != *f.IsPaid {
		return false
	}

	day := ledger.DateOnly(t.Date)

	if f.StartDate != nil && day.Before(ledger.DateOnly(*f.StartDate)) {
		return false
	}

	if f.EndDate != nil && day.After(ledger.DateOnly(*f.EndDate)) {
		return false
	}

	if f.MinAmount != nil && t.Amount < *f.MinAmount {
		return false
	}

	if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
		return false
	}

	return true
}

// Store keeps the fields the transaction store can narrow on, so fewer rows
// reach Match.
func (f TransactionFilter) Store() ledger.ListFilter {
	return ledger.ListFilter{
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
		AccountID:    f.AccountID,
		CreditCardID: f.CreditCardID,
		Type:         f.Type,
	}
}

// Transactions returns the matching transactions in their original order.
func Transactions(txs []*ledger.Transaction, f TransactionFilter) []*ledger.Transaction {
	return filter(txs, f.Match)
}

type AccountFilter struct {
	Type       *ledger.AccountType
	IsActive   *bool
	Search     *string
	MinBalance *int64
	MaxBalance *int64
}

func (f AccountFilter) Match(a *ledger.Account) bool {
	if f.Type != nil && a.Type != *f.Type {
		return false
	}

	if f.IsActive != nil && a.IsActive != *f.IsActive {
		return false
	}

	if f.Search != nil && !containsFold(a.Name, *f.Search) {
		return false
	}

	if f.MinBalance != nil && a.Balance < *f.MinBalance {
		return false
	}

	if f.MaxBalance != nil && a.Balance > *f.MaxBalance {
		return false
	}

	return true
}

func Accounts(accs []*ledger.Account, f AccountFilter) []*ledger.Account {
	return filter(accs, f.Match)
}

type CategoryFilter struct {
	Type     *ledger.Type
	IsActive *bool
	// Search matches name or description.
	Search *string
}

func (f CategoryFilter) Match(c *ledger.Category) bool {
	if f.Type != nil && c.Type != *f.Type {
		return false
	}

	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}

	if f.Search != nil && !containsFold(c.Name, *f.Search) && !containsFold(c.Description, *f.Search) {
		return false
	}

	return true
}

func Categories(cats []*ledger.Category, f CategoryFilter) []*ledger.Category {
	return filter(cats, f.Match)
}

// SortByDue orders items by ascending due date, breaking ties by id. The
// input is left untouched.
func SortByDue[T any](items []T, due func(T) time.Time, id func(T) uuid.UUID) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if c := due(a).Compare(due(b)); c != 0 {
			return c
		}

		ia, ib := id(a), id(b)

		return bytes.Compare(ia[:], ib[:])
	})

	return out
}

type Page struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Paginate returns the 1-based page of items. Out-of-range pages are empty.
func Paginate[T any](items []T, page, limit int) ([]T, Page) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	limit = min(limit, MaxLimit)
	page = max(page, 1)

	total := len(items)
	totalPages := (total + limit - 1) / limit

	meta := Page{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}

	// Compared before multiplying so a huge page cannot overflow start.
	if page > totalPages {
		return []T{}, meta
	}

	start := (page - 1) * limit
	end := min(start+limit, total)

	return items[start:end], meta
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))

	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}

	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
