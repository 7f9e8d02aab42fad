package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

type transactionResponse struct {
	ID                 uuid.UUID    `json:"id"`
	Description        string       `json:"description"`
	Amount             money.Amount `json:"amount"`
	Type               ledger.Type  `json:"type"`
	Date               string       `json:"date"`
	IsPaid             bool         `json:"isPaid"`
	Installments       *int         `json:"installments,omitempty"`
	CurrentInstallment *int         `json:"currentInstallment,omitempty"`
	CategoryID         uuid.UUID    `json:"categoryId"`
	AccountID          *uuid.UUID   `json:"accountId,omitempty"`
	CreditCardID       *uuid.UUID   `json:"creditCardId,omitempty"`
	GoalID             *uuid.UUID   `json:"goalId,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

type listResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	TotalAmount  money.Amount          `json:"totalAmount"`
	TotalPaid    money.Amount          `json:"totalPaid"`
	TotalPending money.Amount          `json:"totalPending"`
	Pagination   query.Page            `json:"pagination"`
}

type categoryTotalResponse struct {
	CategoryID   uuid.UUID    `json:"categoryId"`
	CategoryName string       `json:"categoryName"`
	Color        string       `json:"color,omitempty"`
	Total        money.Amount `json:"total"`
}

type statsResponse struct {
	TotalIncomes             money.Amount            `json:"totalIncomes"`
	TotalExpenses            money.Amount            `json:"totalExpenses"`
	TotalPaid                money.Amount            `json:"totalPaid"`
	TotalPending             money.Amount            `json:"totalPending"`
	CurrentMonthIncomes      money.Amount            `json:"currentMonthIncomes"`
	CurrentMonthExpenses     money.Amount            `json:"currentMonthExpenses"`
	CurrentMonthIncomeCount  int                     `json:"currentMonthIncomeCount"`
	CurrentMonthExpenseCount int                     `json:"currentMonthExpenseCount"`
	Balance                  money.Amount            `json:"balance"`
	TopCategories            []categoryTotalResponse `json:"topCategories"`
}

type cardSummaryResponse struct {
	ID                   uuid.UUID    `json:"id"`
	Name                 string       `json:"name"`
	CycleStart           string       `json:"cycleStart"`
	CycleEnd             string       `json:"cycleEnd"`
	DueDate              string       `json:"dueDate"`
	TotalSpent           money.Amount `json:"totalSpent"`
	AvailableLimit       money.Amount `json:"availableLimit"`
	LimitUsagePercentage float64      `json:"limitUsagePercentage"`
	TransactionsCount    int          `json:"transactionsCount"`
}

type budgetSummaryResponse struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Amount     money.Amount `json:"amount"`
	Spent      money.Amount `json:"spent"`
	Remaining  money.Amount `json:"remaining"`
	Percentage float64      `json:"percentage"`
}

type goalSummaryResponse struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	TargetAmount  money.Amount `json:"targetAmount"`
	CurrentAmount money.Amount `json:"currentAmount"`
	TargetDate    string       `json:"targetDate"`
	Percentage    float64      `json:"percentage"`
	DaysRemaining int          `json:"daysRemaining"`
}

type dashboardResponse struct {
	TotalBalance  money.Amount           `json:"totalBalance"`
	MonthIncome   money.Amount           `json:"monthIncome"`
	MonthExpense  money.Amount           `json:"monthExpense"`
	CreditCards   []cardSummaryResponse  `json:"creditCards"`
	Budget        *budgetSummaryResponse `json:"budget"`
	UpcomingGoals []goalSummaryResponse  `json:"upcomingGoals"`
}

type importResponse struct {
	Imported     int                   `json:"imported"`
	Skipped      int                   `json:"skipped"`
	Transactions []transactionResponse `json:"transactions"`
}

type previewRow struct {
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Type        ledger.Type  `json:"type"`
	Date        string       `json:"date"`
	CategoryID  uuid.UUID    `json:"categoryId"`
}

type previewResponse struct {
	Rows    []previewRow `json:"rows"`
	Skipped int          `json:"skipped"`
}

func toResponse(t *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 t.ID,
		Description:        t.Description,
		Amount:             money.Amount(t.Amount),
		Type:               t.Type,
		Date:               t.Date.Format(time.DateOnly),
		IsPaid:             t.IsPaid,
		Installments:       t.Installments,
		CurrentInstallment: t.CurrentInstallment,
		CategoryID:         t.CategoryID,
		AccountID:          t.AccountID,
		CreditCardID:       t.CreditCardID,
		GoalID:             t.GoalID,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toResponse(t)
	}

	return resp
}

func toStatsResponse(st *stats.TransactionStats) statsResponse {
	resp := statsResponse{
		TotalIncomes:             money.Amount(st.TotalIncomes),
		TotalExpenses:            money.Amount(st.TotalExpenses),
		TotalPaid:                money.Amount(st.TotalPaid),
		TotalPending:             money.Amount(st.TotalPending),
		CurrentMonthIncomes:      money.Amount(st.CurrentMonthIncomes),
		CurrentMonthExpenses:     money.Amount(st.CurrentMonthExpenses),
		CurrentMonthIncomeCount:  st.CurrentMonthIncomeCount,
		CurrentMonthExpenseCount: st.CurrentMonthExpenseCount,
		Balance:                  money.Amount(st.Balance),
		TopCategories:            make([]categoryTotalResponse, len(st.TopCategories)),
	}

	for i, c := range st.TopCategories {
		resp.TopCategories[i] = categoryTotalResponse{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Color:        c.Color,
			Total:        money.Amount(c.Total),
		}
	}

	return resp
}

func toDashboardResponse(d *stats.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		TotalBalance:  money.Amount(d.TotalBalance),
		MonthIncome:   money.Amount(d.MonthIncome),
		MonthExpense:  money.Amount(d.MonthExpense),
		CreditCards:   make([]cardSummaryResponse, len(d.Cards)),
		UpcomingGoals: make([]goalSummaryResponse, len(d.UpcomingGoals)),
	}

	for i, c := range d.Cards {
		resp.CreditCards[i] = cardSummaryResponse{
			ID:                   c.Card.ID,
			Name:                 c.Card.Name,
			CycleStart:           c.Cycle.Start.Format(time.DateOnly),
			CycleEnd:             c.Cycle.End.Format(time.DateOnly),
			DueDate:              c.Cycle.Due.Format(time.DateOnly),
			TotalSpent:           money.Amount(c.TotalSpent),
			AvailableLimit:       money.Amount(c.AvailableLimit),
			LimitUsagePercentage: c.LimitUsagePercentage,
			TransactionsCount:    c.TransactionsCount,
		}
	}

	if d.Budget != nil && d.BudgetProgress != nil {
		resp.Budget = &budgetSummaryResponse{
			ID:         d.Budget.ID,
			Name:       d.Budget.Name,
			Amount:     money.Amount(d.BudgetProgress.Amount),
			Spent:      money.Amount(d.BudgetProgress.Spent),
			Remaining:  money.Amount(d.BudgetProgress.Remaining),
			Percentage: d.BudgetProgress.Percentage,
		}
	}

	for i, g := range d.UpcomingGoals {
		resp.UpcomingGoals[i] = goalSummaryResponse{
			ID:            g.ID,
			Title:         g.Title,
			TargetAmount:  money.Amount(g.TargetAmount),
			CurrentAmount: money.Amount(g.CurrentAmount),
			TargetDate:    g.TargetDate.Format(time.DateOnly),
			Percentage:    g.Progress.Percentage,
			DaysRemaining: g.Progress.DaysRemaining,
		}
	}

	return resp
}

func toPreviewResponse(rows []ledger.CreateParams, skipped int) previewResponse {
	resp := previewResponse{Rows: make([]previewRow, len(rows)), Skipped: skipped}

	for i, p := range rows {
		resp.Rows[i] = previewRow{
			Description: p.Description,
			Amount:      money.Amount(p.Amount),
			Type:        p.Type,
			Date:        p.Date.Format(time.DateOnly),
			CategoryID:  p.CategoryID,
		}
	}

	return resp
}
