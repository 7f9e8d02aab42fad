package goal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	goalhttp "github.com/MrJamesThe3rd/pennywise/internal/http/goal"
)

var (
	owner = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	today = time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type goalBody struct {
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    string  `json:"targetDate"`
	Progress      struct {
		Percentage    float64 `json:"percentage"`
		Remaining     float64 `json:"remainingAmount"`
		IsCompleted   bool    `json:"isCompleted"`
		DaysRemaining int     `json:"daysRemaining"`
	} `json:"progress"`
}

func setup(t *testing.T) (chi.Router, *goal.MockRepository) {
	t.Helper()

	repo := goal.NewMockRepository(gomock.NewController(t))
	svc := goal.NewService(repo, events.Noop{}).WithClock(func() time.Time { return today })

	r := chi.NewRouter()
	r.Route("/goals", goalhttp.NewHandler(svc).Routes)

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

	repo.EXPECT().CreateGoal(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, g *goal.Goal) error {
		assert.Equal(t, int64(100000), g.TargetAmount)
		assert.Equal(t, int64(25000), g.CurrentAmount)
		assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), g.TargetDate)

		g.ID = uuid.New()

		return nil
	})

	body := `{"title":"Holiday","targetAmount":1000,"currentAmount":250,"targetDate":"2024-06-11T18:30:00Z"}`

	rec, env := do(t, r, http.MethodPost, "/goals", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got goalBody
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "2024-06-11", got.TargetDate)
	assert.Equal(t, 25.0, got.Progress.Percentage)
	assert.Equal(t, 750.0, got.Progress.Remaining)
	assert.Equal(t, 10, got.Progress.DaysRemaining)
	assert.False(t, got.Progress.IsCompleted)
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingTitle", body: `{"targetAmount":10,"targetDate":"2024-07-01"}`},
		{name: "ZeroTarget", body: `{"title":"X","targetAmount":0,"targetDate":"2024-07-01"}`},
		{name: "MissingDate", body: `{"title":"X","targetAmount":10}`},
		{name: "BadDate", body: `{"title":"X","targetAmount":10,"targetDate":"01/07/2024"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setup(t)

			rec, env := do(t, r, http.MethodPost, "/goals", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestList_OrderedByTargetDate(t *testing.T) {
	r, repo := setup(t)

	repo.EXPECT().ListGoals(gomock.Any(), owner).Return([]*goal.Goal{
		{ID: uuid.New(), Title: "Car", TargetAmount: 100, TargetDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), Title: "Phone", TargetAmount: 100, TargetDate: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)

	rec, env := do(t, r, http.MethodGet, "/goals", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Goals []goalBody `json:"goals"`
		Total int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Goals, 2)
	assert.Equal(t, "Phone", got.Goals[0].Title)
	assert.Equal(t, "Car", got.Goals[1].Title)
}

func TestGetProgress(t *testing.T) {
	r, repo := setup(t)
	id := uuid.New()

	repo.EXPECT().GetGoal(gomock.Any(), owner, id).Return(&goal.Goal{
		ID: id, Title: "Laptop", TargetAmount: 100000, CurrentAmount: 120000,
		TargetDate: time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
	}, nil)

	rec, env := do(t, r, http.MethodGet, "/goals/"+id.String()+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Percentage    float64 `json:"percentage"`
		Remaining     float64 `json:"remainingAmount"`
		IsCompleted   bool    `json:"isCompleted"`
		DaysRemaining int     `json:"daysRemaining"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 120.0, got.Percentage)
	assert.Zero(t, got.Remaining)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, -2, got.DaysRemaining)
}

func TestAddProgress(t *testing.T) {
	t.Run("Adds", func(t *testing.T) {
		r, repo := setup(t)
		id := uuid.New()

		repo.EXPECT().AddProgress(gomock.Any(), owner, id, int64(5050)).Return(&goal.Goal{
			ID: id, Title: "Bike", TargetAmount: 10000, CurrentAmount: 10050,
			TargetDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		}, nil)

		rec, env := do(t, r, http.MethodPost, "/goals/"+id.String()+"/progress", `{"amount":50.50}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got goalBody
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 100.5, got.CurrentAmount)
		assert.True(t, got.Progress.IsCompleted)
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		r, repo := setup(t)
		id := uuid.New()

		repo.EXPECT().AddProgress(gomock.Any(), owner, id, int64(100)).Return(nil, goal.ErrCompleted)

		rec, _ := do(t, r, http.MethodPost, "/goals/"+id.String()+"/progress", `{"amount":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NonPositive", func(t *testing.T) {
		r, _ := setup(t)

		rec, _ := do(t, r, http.MethodPost, "/goals/"+uuid.NewString()+"/progress", `{"amount":-5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdate(t *testing.T) {
	r, repo := setup(t)
	id := uuid.New()

	repo.EXPECT().GetGoal(gomock.Any(), owner, id).Return(&goal.Goal{
		ID: id, Title: "Bike", TargetAmount: 10000, TargetDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}, nil)
	repo.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, g *goal.Goal) error {
		assert.Equal(t, "E-bike", g.Title)
		assert.Equal(t, int64(250000), g.TargetAmount)
		assert.Equal(t, time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC), g.TargetDate)

		return nil
	})

	rec, _ := do(t, r, http.MethodPut, "/goals/"+id.String(), `{"title":"E-bike","targetAmount":2500,"targetDate":"2024-12-24"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
