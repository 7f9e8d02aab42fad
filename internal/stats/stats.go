// Package stats aggregates ledger data into the figures shown on summary
// pages.
package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

const topCategoriesLimit = 5

type AccountStats struct {
	TotalAccounts  int
	TotalBalance   int64
	AccountsByType map[ledger.AccountType]int
	BalanceByType  map[ledger.AccountType]int64
	HighestBalance int64
	AverageBalance int64
}

// ComputeAccountStats summarises the active accounts.
func ComputeAccountStats(accs []*ledger.Account) AccountStats {
	st := AccountStats{
		AccountsByType: make(map[ledger.AccountType]int, len(ledger.AccountTypes)),
		BalanceByType:  make(map[ledger.AccountType]int64, len(ledger.AccountTypes)),
	}

	for _, t := range ledger.AccountTypes {
		st.AccountsByType[t] = 0
		st.BalanceByType[t] = 0
	}

	for _, a := range accs {
		if !a.IsActive {
			continue
		}

		if st.TotalAccounts == 0 || a.Balance > st.HighestBalance {
			st.HighestBalance = a.Balance
		}

		st.TotalAccounts++
		st.TotalBalance += a.Balance
		st.AccountsByType[a.Type]++
		st.BalanceByType[a.Type] += a.Balance
	}

	if st.TotalAccounts > 0 {
		st.AverageBalance = decimal.NewFromInt(st.TotalBalance).
			Div(decimal.NewFromInt(int64(st.TotalAccounts))).
			Round(0).
			IntPart()
	}

	return st
}

type CategoryTotal struct {
	CategoryID   uuid.UUID
	CategoryName string
	Color        string
	Total        int64
}

type TransactionStats struct {
	TotalIncomes             int64
	TotalExpenses            int64
	TotalPaid                int64
	TotalPending             int64
	CurrentMonthIncomes      int64
	CurrentMonthExpenses     int64
	CurrentMonthIncomeCount  int
	CurrentMonthExpenseCount int
	Balance                  int64
	TopCategories            []CategoryTotal
}

// ComputeTransactionStats totals txs overall and for the calendar month of
// today. TopCategories holds the five largest expense categories.
func ComputeTransactionStats(txs []*ledger.Transaction, cats []*ledger.Category, today time.Time) TransactionStats {
	var st TransactionStats

	year, month, _ := today.Date()
	byCategory := make(map[uuid.UUID]int64)

	for _, t := range txs {
		ty, tm, _ := t.Date.Date()
		thisMonth := ty == year && tm == month

		switch t.Type {
		case ledger.TypeIncome:
			st.TotalIncomes += t.Amount

			if thisMonth {
				st.CurrentMonthIncomes += t.Amount
				st.CurrentMonthIncomeCount++
			}
		case ledger.TypeExpense:
			st.TotalExpenses += t.Amount
			byCategory[t.CategoryID] += t.Amount

			if thisMonth {
				st.CurrentMonthExpenses += t.Amount
				st.CurrentMonthExpenseCount++
			}
		}

		if t.IsPaid {
			st.TotalPaid += t.Amount
		} else {
			st.TotalPending += t.Amount
		}
	}

	st.Balance = st.TotalIncomes - st.TotalExpenses
	st.TopCategories = topCategories(byCategory, cats)

	return st
}

func topCategories(totals map[uuid.UUID]int64, cats []*ledger.Category) []CategoryTotal {
	names := make(map[uuid.UUID]*ledger.Category, len(cats))
	for _, c := range cats {
		names[c.ID] = c
	}

	out := make([]CategoryTotal, 0, len(totals))

	for id, total := range totals {
		ct := CategoryTotal{CategoryID: id, Total: total}
		if c, ok := names[id]; ok {
			ct.CategoryName = c.Name
			ct.Color = c.Color
		}

		out = append(out, ct)
	}

	slices.SortFunc(out, func(a, b CategoryTotal) int {
		return cmp.Or(
			cmp.Compare(b.Total, a.Total),
			cmp.Compare(a.CategoryName, b.CategoryName),
			cmp.Compare(a.CategoryID.String(), b.CategoryID.String()),
		)
	})

	return out[:min(len(out), topCategoriesLimit)]
}
