package budget

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

// Item is the planned spending for one expense category.
type Item struct {
	CategoryID uuid.UUID
	Planned    int64
	Spent      int64
}

// Budget is the spending plan of one owner for one calendar month.
type Budget struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Month     int
	Year      int
	Amount    int64
	Spent     int64
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Budget) Validate() error {
	if b.Name == "" {
		return &ledger.ValidationError{Field: "name", Message: "is required"}
	}

	if b.Month < 1 || b.Month > 12 {
		return &ledger.ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}

	if b.Year < 1900 || b.Year > 9999 {
		return &ledger.ValidationError{Field: "year", Message: "is out of range"}
	}

	if b.Amount < 0 {
		return &ledger.ValidationError{Field: "amount", Message: "must not be negative"}
	}

	seen := make(map[uuid.UUID]bool, len(b.Items))

	for _, it := range b.Items {
		if it.CategoryID == uuid.Nil {
			return &ledger.ValidationError{Field: "items", Message: "categoryId is required"}
		}

		if it.Planned < 0 {
			return &ledger.ValidationError{Field: "items", Message: "planned must not be negative"}
		}

		if seen[it.CategoryID] {
			return &ledger.ValidationError{Field: "items", Message: "category listed twice"}
		}

		seen[it.CategoryID] = true
	}

	return nil
}

// MonthRange returns the first and last calendar day of the month.
func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// SpentInMonth sums the expenses dated within month/year, overall and per
// category.
func SpentInMonth(txs []*ledger.Transaction, month, year int) (int64, map[uuid.UUID]int64) {
	var total int64

	byCategory := make(map[uuid.UUID]int64)

	for _, t := range txs {
		if t.Type != ledger.TypeExpense {
			continue
		}

		y, m, _ := t.Date.Date()
		if y != year || int(m) != month {
			continue
		}

		total += t.Amount
		byCategory[t.CategoryID] += t.Amount
	}

	return total, byCategory
}

// Apply stores the spent figures computed from txs on b and its items.
func (b *Budget) Apply(txs []*ledger.Transaction) {
	total, byCategory := SpentInMonth(txs, b.Month, b.Year)

	b.Spent = total
	for i := range b.Items {
		b.Items[i].Spent = byCategory[b.Items[i].CategoryID]
	}
}

type ItemProgress struct {
	CategoryID uuid.UUID
	Planned    int64
	Spent      int64
	Remaining  int64
	Percentage float64
}

// Progress is spent against planned. Remaining goes negative when overspent.
type Progress struct {
	Amount     int64
	Spent      int64
	Remaining  int64
	Percentage float64
	Items      []ItemProgress
}

func ComputeProgress(b *Budget) Progress {
	p := Progress{
		Amount:     b.Amount,
		Spent:      b.Spent,
		Remaining:  b.Amount - b.Spent,
		Percentage: money.Percentage(b.Spent, b.Amount),
		Items:      make([]ItemProgress, len(b.Items)),
	}

	for i, it := range b.Items {
		p.Items[i] = ItemProgress{
			CategoryID: it.CategoryID,
			Planned:    it.Planned,
			Spent:      it.Spent,
			Remaining:  it.Planned - it.Spent,
			Percentage: money.Percentage(it.Spent, it.Planned),
		}
	}

	return p
}
