package category_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/events"
	categoryhttp "github.com/MrJamesThe3rd/pennywise/internal/http/category"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

var owner = uuid.MustParse("00000000-0000-0000-0000-00000000000a")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setup(t *testing.T) (chi.Router, *category.MockRepository) {
	t.Helper()

	repo := category.NewMockRepository(gomock.NewController(t))

	r := chi.NewRouter()
	r.Route("/categories", categoryhttp.NewHandler(category.NewService(repo, events.Noop{})).Routes)

	return r, repo
}

func do(t *testing.T, r chi.Router, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithOwner(req.Context(), owner))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func TestCreate(t *testing.T) {
	r, repo := setup(t)

	repo.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *ledger.Category) error {
		assert.Equal(t, "Groceries", c.Name)
		assert.Equal(t, ledger.TypeExpense, c.Type)
		assert.Equal(t, owner, c.OwnerID)

		c.ID = uuid.New()

		return nil
	})

	rec, env := do(t, r, http.MethodPost, "/categories", `{"name":" Groceries ","type":"expense","color":"#ff0000"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		IsActive bool   `json:"isActive"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Groceries", got.Name)
	assert.Equal(t, "EXPENSE", got.Type)
	assert.True(t, got.IsActive)
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingName", body: `{"type":"expense"}`},
		{name: "BadType", body: `{"name":"X","type":"transfer"}`},
		{name: "BadColor", body: `{"name":"X","type":"income","color":"red"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setup(t)

			rec, env := do(t, r, http.MethodPost, "/categories", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestList_Filters(t *testing.T) {
	r, repo := setup(t)

	repo.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{
		{ID: uuid.New(), Name: "Salary", Type: ledger.TypeIncome, IsActive: true},
		{ID: uuid.New(), Name: "Food", Type: ledger.TypeExpense, IsActive: true},
		{ID: uuid.New(), Name: "Fuel", Type: ledger.TypeExpense, IsActive: false},
	}, nil)

	rec, env := do(t, r, http.MethodGet, "/categories?type=EXPENSE&isActive=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Food", got.Categories[0].Name)
	assert.Equal(t, 1, got.Total)
}

func TestStats(t *testing.T) {
	r, repo := setup(t)

	repo.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{
		{Type: ledger.TypeIncome, IsActive: true},
		{Type: ledger.TypeExpense, IsActive: true},
		{Type: ledger.TypeExpense},
	}, nil)

	rec, env := do(t, r, http.MethodGet, "/categories/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, map[string]int{
		"totalCategories":    3,
		"incomeCategories":   1,
		"expenseCategories":  2,
		"activeCategories":   2,
		"inactiveCategories": 1,
	}, got)
}

func TestSuggest(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		found  uuid.UUID
		wantID *uuid.UUID
	}{
		{name: "Match", found: id, wantID: &id},
		{name: "NoMatch", found: uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := setup(t)

			repo.EXPECT().FindRule(gomock.Any(), owner, "PINGO DOCE LISBOA", ledger.TypeExpense).Return(tt.found, nil)

			rec, env := do(t, r, http.MethodGet, "/categories/rules?description=PINGO+DOCE+LISBOA&type=expense", "")
			require.Equal(t, http.StatusOK, rec.Code)

			var got struct {
				CategoryID *uuid.UUID `json:"categoryId"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, tt.wantID, got.CategoryID)
		})
	}
}

func TestSuggest_MissingParams(t *testing.T) {
	r, _ := setup(t)

	rec, _ := do(t, r, http.MethodGet, "/categories/rules?description=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLearn(t *testing.T) {
	r, repo := setup(t)
	catID := uuid.New()

	repo.EXPECT().GetCategory(gomock.Any(), owner, catID).Return(&ledger.Category{ID: catID}, nil)
	repo.EXPECT().CreateRule(gomock.Any(), owner, "PINGO DOCE", catID).Return(nil)

	rec, _ := do(t, r, http.MethodPost, "/categories/rules", `{"pattern":"PINGO DOCE","categoryId":"`+catID.String()+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdate_ChangesType(t *testing.T) {
	r, repo := setup(t)
	id := uuid.New()

	repo.EXPECT().GetCategory(gomock.Any(), owner, id).
		Return(&ledger.Category{ID: id, OwnerID: owner, Name: "Bonus", Type: ledger.TypeExpense, IsActive: true}, nil)
	repo.EXPECT().CategoryInUse(gomock.Any(), owner, id).Return(false, nil)
	repo.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *ledger.Category) error {
		assert.Equal(t, ledger.TypeIncome, c.Type)
		assert.False(t, c.IsActive)

		return nil
	})

	rec, _ := do(t, r, http.MethodPut, "/categories/"+id.String(), `{"type":"income","isActive":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdate_TypeChangeInUse(t *testing.T) {
	r, repo := setup(t)
	id := uuid.New()

	repo.EXPECT().GetCategory(gomock.Any(), owner, id).
		Return(&ledger.Category{ID: id, OwnerID: owner, Name: "Groceries", Type: ledger.TypeExpense, IsActive: true}, nil)
	repo.EXPECT().CategoryInUse(gomock.Any(), owner, id).Return(true, nil)

	rec, env := do(t, r, http.MethodPut, "/categories/"+id.String(), `{"type":"INCOME"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestDelete_InUse(t *testing.T) {
	r, repo := setup(t)
	id := uuid.New()

	repo.EXPECT().DeleteCategory(gomock.Any(), owner, id).Return(ledger.ErrConflict)

	rec, env := do(t, r, http.MethodDelete, "/categories/"+id.String(), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}
