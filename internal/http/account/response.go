package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

type accountResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Type      ledger.AccountType `json:"type"`
	Balance   money.Amount       `json:"balance"`
	IsActive  bool               `json:"isActive"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type listResponse struct {
	Accounts       []accountResponse `json:"accounts"`
	TotalBalance   money.Amount      `json:"totalBalance"`
	AccountsByType map[string]int    `json:"accountsByType"`
}

type statsResponse struct {
	TotalAccounts  int                     `json:"totalAccounts"`
	TotalBalance   money.Amount            `json:"totalBalance"`
	AccountsByType map[string]int          `json:"accountsByType"`
	BalanceByType  map[string]money.Amount `json:"balanceByType"`
	HighestBalance money.Amount            `json:"highestBalance"`
	AverageBalance money.Amount            `json:"averageBalance"`
}

type transferResponse struct {
	FromAccount    accountResponse `json:"fromAccount"`
	ToAccount      accountResponse `json:"toAccount"`
	TransferAmount money.Amount    `json:"transferAmount"`
	Description    string          `json:"description"`
}

func toResponse(a *ledger.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      a.Type,
		Balance:   money.Amount(a.Balance),
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toResponseList(accs []*ledger.Account) []accountResponse {
	resp := make([]accountResponse, len(accs))
	for i, a := range accs {
		resp[i] = toResponse(a)
	}

	return resp
}

func toStatsResponse(st *stats.AccountStats) statsResponse {
	resp := statsResponse{
		TotalAccounts:  st.TotalAccounts,
		TotalBalance:   money.Amount(st.TotalBalance),
		AccountsByType: make(map[string]int, len(ledger.AccountTypes)),
		BalanceByType:  make(map[string]money.Amount, len(ledger.AccountTypes)),
		HighestBalance: money.Amount(st.HighestBalance),
		AverageBalance: money.Amount(st.AverageBalance),
	}

	for _, t := range ledger.AccountTypes {
		resp.AccountsByType[typeKey(t)] = st.AccountsByType[t]
		resp.BalanceByType[typeKey(t)] = money.Amount(st.BalanceByType[t])
	}

	return resp
}
