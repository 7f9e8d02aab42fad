// Package billing works out credit card statement periods and what was
// charged in them.
package billing

import (
	"time"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

// Cycle is a statement period. Start and End are inclusive calendar days;
// Due is the payment date of the statement closing on End.
type Cycle struct {
	Start time.Time
	End   time.Time
	Due   time.Time
}

// Contains reports whether t falls on a day within the cycle.
func (c Cycle) Contains(t time.Time) bool {
	d := ledger.DateOnly(t)
	return !d.Before(c.Start) && !d.After(c.End)
}

// clamped returns day of the given month, or the month's last day when the
// month is shorter. Month overflow is normalised by time.Date.
func clamped(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()

	return first.AddDate(0, 0, min(day, last)-1)
}

// CurrentCycle returns the most recently closed statement period as of today:
// it ends on this month's closing day when today has reached it, otherwise on
// last month's.
func CurrentCycle(closingDay, dueDay int, today time.Time) Cycle {
	today = ledger.DateOnly(today)
	y, m, _ := today.Date()

	end := clamped(y, m, closingDay)
	if today.Before(end) {
		end = clamped(y, m-1, closingDay)
	}

	ey, em, _ := end.Date()
	prevEnd := clamped(ey, em-1, closingDay)

	due := clamped(ey, em, dueDay)
	if !due.After(end) {
		due = clamped(ey, em+1, dueDay)
	}

	return Cycle{
		Start: prevEnd.AddDate(0, 0, 1),
		End:   end,
		Due:   due,
	}
}

type Stats struct {
	Card                 *ledger.CreditCard
	Cycle                Cycle
	TotalSpent           int64
	AvailableLimit       int64
	LimitUsagePercentage float64
	TransactionsCount    int
}

// Summarize aggregates the card's expenses dated inside the current cycle.
// Overspending yields a negative available limit, not an error.
func Summarize(card *ledger.CreditCard, txs []*ledger.Transaction, today time.Time) Stats {
	cycle := CurrentCycle(card.ClosingDay, card.DueDay, today)

	var spent int64

	var count int

	for _, t := range txs {
		if t.Type != ledger.TypeExpense || t.CreditCardID == nil || *t.CreditCardID != card.ID {
			continue
		}

		if !cycle.Contains(t.Date) {
			continue
		}

		spent += t.Amount
		count++
	}

	return Stats{
		Card:                 card,
		Cycle:                cycle,
		TotalSpent:           spent,
		AvailableLimit:       card.Limit - spent,
		LimitUsagePercentage: money.Percentage(spent, card.Limit),
		TransactionsCount:    count,
	}
}
