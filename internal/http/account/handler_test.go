package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/account"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

var owner = uuid.MustParse("00000000-0000-0000-0000-00000000000a")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fixture struct {
	repo   *ledger.MockRepository
	ledger *stats.MockLedgerReader
	router chi.Router
}

func setup(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:   ledger.NewMockRepository(ctrl),
		ledger: stats.NewMockLedgerReader(ctrl),
	}

	st := stats.NewService(stats.Sources{Ledger: f.ledger}, cache.New(stats.DefaultExpiration, stats.CleanupInterval))

	f.router = chi.NewRouter()
	f.router.Route("/accounts", account.NewHandler(ledger.NewService(f.repo), st).Routes)

	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithOwner(req.Context(), owner))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func TestCreate(t *testing.T) {
	f := setup(t)

	f.repo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, acc *ledger.Account) error {
		assert.Equal(t, owner, acc.OwnerID)
		assert.Equal(t, "Main", acc.Name)
		assert.Equal(t, ledger.AccountSavings, acc.Type)
		assert.Equal(t, int64(150050), acc.Balance)

		acc.ID = uuid.New()

		return nil
	})

	rec, env := f.do(t, http.MethodPost, "/accounts", `{"name":"<b>Main</b>","type":"savings","balance":1500.50}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "SAVINGS", got["type"])
	assert.InDelta(t, 1500.50, got["balance"], 0.001)
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingName", body: `{"type":"CASH"}`},
		{name: "UnknownType", body: `{"name":"x","type":"CRYPTO"}`},
		{name: "UnknownField", body: `{"name":"x","type":"CASH","userId":"y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			rec, env := f.do(t, http.MethodPost, "/accounts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestList_Filters(t *testing.T) {
	f := setup(t)

	f.repo.EXPECT().ListAccounts(gomock.Any(), owner).Return([]*ledger.Account{
		{ID: uuid.New(), Name: "Main", Type: ledger.AccountChecking, Balance: 100000, IsActive: true},
		{ID: uuid.New(), Name: "Rainy day", Type: ledger.AccountSavings, Balance: 500000, IsActive: true},
		{ID: uuid.New(), Name: "Wallet", Type: ledger.AccountCash, Balance: 2000, IsActive: true},
	}, nil)

	rec, env := f.do(t, http.MethodGet, "/accounts?minBalance=50", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Accounts       []map[string]any `json:"accounts"`
		TotalBalance   float64          `json:"totalBalance"`
		AccountsByType map[string]int   `json:"accountsByType"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))

	assert.Len(t, got.Accounts, 2)
	assert.InDelta(t, 6000.0, got.TotalBalance, 0.001)
	assert.Equal(t, map[string]int{"checking": 1, "savings": 1, "investment": 0, "cash": 0}, got.AccountsByType)
}

func TestList_BadFilter(t *testing.T) {
	f := setup(t)

	rec, _ := f.do(t, http.MethodGet, "/accounts?type=crypto", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet_NotFound(t *testing.T) {
	f := setup(t)
	id := uuid.New()

	f.repo.EXPECT().GetAccount(gomock.Any(), owner, id).Return(nil, ledger.ErrNotFound)

	rec, env := f.do(t, http.MethodGet, "/accounts/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestGet_InvalidID(t *testing.T) {
	f := setup(t)

	rec, _ := f.do(t, http.MethodGet, "/accounts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate_RejectsBalance(t *testing.T) {
	f := setup(t)

	rec, env := f.do(t, http.MethodPut, "/accounts/"+uuid.NewString(), `{"balance":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "balance")
}

func TestDelete_InUse(t *testing.T) {
	f := setup(t)
	id := uuid.New()

	f.repo.EXPECT().DeleteAccount(gomock.Any(), owner, id).Return(ledger.ErrConflict)

	rec, _ := f.do(t, http.MethodDelete, "/accounts/"+id.String(), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransfer_SameAccount(t *testing.T) {
	f := setup(t)
	id := uuid.NewString()

	rec, env := f.do(t, http.MethodPost, "/accounts/transfer", `{"fromAccountId":"`+id+`","toAccountId":"`+id+`","amount":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestTransfer_NonPositiveAmount(t *testing.T) {
	f := setup(t)

	rec, _ := f.do(t, http.MethodPost, "/accounts/transfer", `{"fromAccountId":"`+uuid.NewString()+`","toAccountId":"`+uuid.NewString()+`","amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	f := setup(t)

	f.ledger.EXPECT().ListAccounts(gomock.Any(), owner).Return([]*ledger.Account{
		{ID: uuid.New(), Type: ledger.AccountChecking, Balance: 10000, IsActive: true},
		{ID: uuid.New(), Type: ledger.AccountInvestment, Balance: 30000, IsActive: true},
	}, nil)

	rec, env := f.do(t, http.MethodGet, "/accounts/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.EqualValues(t, 2, got["totalAccounts"])
	assert.InDelta(t, 400.0, got["totalBalance"], 0.001)
	assert.InDelta(t, 300.0, got["highestBalance"], 0.001)
	assert.InDelta(t, 200.0, got["averageBalance"], 0.001)
}
