package transaction_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

var (
	owner   = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	account = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	food    = uuid.MustParse("00000000-0000-0000-0000-0000000000c1")
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fixture struct {
	repo       *ledger.MockRepository
	tx         *ledger.MockTx
	stats      *stats.MockLedgerReader
	categories *stats.MockCategoryLister
	exportTxs  *export.MockTransactionLister
	exportCats *export.MockCategoryLister
	cards      *export.MockCardLister
	importCats *importer.MockCategorizer
	router     chi.Router
}

func setup(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:       ledger.NewMockRepository(ctrl),
		tx:         ledger.NewMockTx(ctrl),
		stats:      stats.NewMockLedgerReader(ctrl),
		categories: stats.NewMockCategoryLister(ctrl),
		exportTxs:  export.NewMockTransactionLister(ctrl),
		exportCats: export.NewMockCategoryLister(ctrl),
		cards:      export.NewMockCardLister(ctrl),
		importCats: importer.NewMockCategorizer(ctrl),
	}

	l := ledger.NewService(f.repo)
	st := stats.NewService(stats.Sources{Ledger: f.stats, Categories: f.categories}, cache.New(stats.DefaultExpiration, stats.CleanupInterval))
	ex := export.NewService(f.exportTxs, f.exportCats, f.cards)
	im := importer.NewService(l, f.importCats)

	f.router = chi.NewRouter()
	f.router.Route("/transactions", transaction.NewHandler(l, st, ex, im).Routes)

	return f
}

func (f *fixture) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req = req.WithContext(auth.WithOwner(req.Context(), owner))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return f.serve(t, httptest.NewRequest(method, path, strings.NewReader(body)))
}

func sample() []*ledger.Transaction {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	return []*ledger.Transaction{
		{ID: uuid.New(), Description: "Groceries", Amount: 5000, Type: ledger.TypeExpense, Date: day, IsPaid: true, CategoryID: food, AccountID: &account},
		{ID: uuid.New(), Description: "Grocery delivery", Amount: 1500, Type: ledger.TypeExpense, Date: day, CategoryID: food, AccountID: &account},
		{ID: uuid.New(), Description: "Cinema", Amount: 1200, Type: ledger.TypeExpense, Date: day, IsPaid: true, CategoryID: uuid.New(), AccountID: &account},
	}
}

func TestList_FiltersTotalsAndPages(t *testing.T) {
	f := setup(t)

	f.repo.EXPECT().ListTransactions(gomock.Any(), owner, ledger.ListFilter{AccountID: &account}).Return(sample(), nil)

	rec, env := f.do(t, http.MethodGet, "/transactions?accountId="+account.String()+"&description=grocer&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Transactions []map[string]any `json:"transactions"`
		Total        int              `json:"total"`
		TotalAmount  float64          `json:"totalAmount"`
		TotalPaid    float64          `json:"totalPaid"`
		TotalPending float64          `json:"totalPending"`
		Pagination   struct {
			Page        int  `json:"page"`
			TotalPages  int  `json:"totalPages"`
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))

	assert.Equal(t, 2, got.Total)
	assert.InDelta(t, 65.0, got.TotalAmount, 0.001)
	assert.InDelta(t, 50.0, got.TotalPaid, 0.001)
	assert.InDelta(t, 15.0, got.TotalPending, 0.001)

	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "Groceries", got.Transactions[0]["description"])
	assert.Equal(t, "2024-03-10", got.Transactions[0]["date"])
	assert.Equal(t, 2, got.Pagination.TotalPages)
	assert.True(t, got.Pagination.HasNextPage)
}

func TestList_InvalidQuery(t *testing.T) {
	tests := []string{
		"/transactions?type=transfer",
		"/transactions?startDate=10-03-2024",
		"/transactions?minAmount=abc",
		"/transactions?categoryId=nope",
		"/transactions?page=x",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			f := setup(t)

			rec, env := f.do(t, http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "ZeroAmount", body: `{"description":"x","amount":0,"type":"EXPENSE","date":"2024-03-10","categoryId":"` + food.String() + `"}`},
		{name: "MissingCategory", body: `{"description":"x","amount":1,"type":"EXPENSE","date":"2024-03-10"}`},
		{name: "BadDate", body: `{"description":"x","amount":1,"type":"EXPENSE","date":"10/03/2024","categoryId":"` + food.String() + `"}`},
		{name: "BadType", body: `{"description":"x","amount":1,"type":"GIFT","date":"2024-03-10","categoryId":"` + food.String() + `"}`},
		{name: "TooManyInstallments", body: `{"description":"x","amount":1,"type":"EXPENSE","date":"2024-03-10","categoryId":"` + food.String() + `","installments":1000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			rec, _ := f.do(t, http.MethodPost, "/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGet(t *testing.T) {
	f := setup(t)
	tx := sample()[0]

	f.repo.EXPECT().GetTransaction(gomock.Any(), owner, tx.ID).Return(tx, nil)

	rec, env := f.do(t, http.MethodGet, "/transactions/"+tx.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.InDelta(t, 50.0, got["amount"], 0.001)
	assert.Equal(t, account.String(), got["accountId"])
	assert.NotContains(t, got, "creditCardId")
}

func TestDelete_NotFound(t *testing.T) {
	f := setup(t)
	id := uuid.New()

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().GetTransactionForUpdate(gomock.Any(), owner, id).Return(nil, ledger.ErrNotFound)
	f.tx.EXPECT().Rollback().Return(nil)

	rec, _ := f.do(t, http.MethodDelete, "/transactions/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTogglePaid(t *testing.T) {
	f := setup(t)
	tx := sample()[1]

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().GetTransactionForUpdate(gomock.Any(), owner, tx.ID).Return(tx, nil)
	f.tx.EXPECT().UpdateTransaction(gomock.Any(), tx).Return(nil)
	f.tx.EXPECT().Commit().Return(nil)
	f.tx.EXPECT().Rollback().Return(nil)

	rec, env := f.do(t, http.MethodPatch, "/transactions/"+tx.ID.String()+"/toggle-paid", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, true, got["isPaid"])
}

func TestStats(t *testing.T) {
	f := setup(t)

	f.stats.EXPECT().ListTransactions(gomock.Any(), owner, ledger.ListFilter{}).Return(sample(), nil)
	f.categories.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{{ID: food, Name: "Food", Type: ledger.TypeExpense}}, nil)

	rec, env := f.do(t, http.MethodGet, "/transactions/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.InDelta(t, 77.0, got["totalExpenses"], 0.001)
	assert.InDelta(t, 15.0, got["totalPending"], 0.001)
}

func TestExport(t *testing.T) {
	f := setup(t)

	f.exportTxs.EXPECT().ListTransactions(gomock.Any(), owner, ledger.ListFilter{}).Return(sample(), nil)
	f.exportTxs.EXPECT().ListAccounts(gomock.Any(), owner).Return([]*ledger.Account{{ID: account, Name: "Main"}}, nil)
	f.exportCats.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{{ID: food, Name: "Food"}}, nil)
	f.cards.EXPECT().List(gomock.Any(), owner).Return(nil, nil)

	rec, _ := f.do(t, http.MethodGet, "/transactions/export?isPaid=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Groceries")
	assert.Contains(t, lines[2], "Cinema")
}

func TestImport_DryRun(t *testing.T) {
	f := setup(t)

	f.importCats.EXPECT().Suggest(gomock.Any(), owner, "CAFE", ledger.TypeExpense).Return(food, nil)

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("bank", "cgd"))
	require.NoError(t, mw.WriteField("accountId", account.String()))
	require.NoError(t, mw.WriteField("dryRun", "true"))

	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("Data mov.;Descrição;Montante\n30-01-2026;CAFE;-2,10\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transactions/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, env := f.serve(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Rows []struct {
			Description string  `json:"description"`
			Amount      float64 `json:"amount"`
			CategoryID  string  `json:"categoryId"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "CAFE", got.Rows[0].Description)
	assert.InDelta(t, 2.10, got.Rows[0].Amount, 0.001)
	assert.Equal(t, food.String(), got.Rows[0].CategoryID)
}

func TestImport_MissingBank(t *testing.T) {
	f := setup(t)

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("accountId", account.String()))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transactions/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec, _ := f.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
