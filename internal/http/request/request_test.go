package request_test

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

	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
)

type payload struct {
	Name  string `json:"name" validate:"required,max=10"`
	Count int    `json:"count" validate:"gte=1"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
		wantErr    bool
	}{
		{name: "Valid", body: `{"name":"ok","count":2}`},
		{name: "Malformed", body: `{"name":`, wantErr: true},
		{name: "UnknownField", body: `{"name":"ok","count":1,"extra":true}`, wantErr: true},
		{name: "Rules", body: `{"name":"","count":0}`, wantErr: true, wantFields: []string{"name", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var p payload

			err := request.Decode(rec, req, &p)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var br *respond.BadRequest
			require.ErrorAs(t, err, &br)

			var fields []string
			for _, d := range br.Details {
				fields = append(fields, d.Field)
			}

			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "Rent & bills", request.Text(" Rent & bills "))
	assert.Equal(t, "hello", request.Text(`<script>alert(1)</script>hello`))
	assert.Equal(t, "bold", request.Text("<b>bold</b>"))
	assert.Nil(t, request.TextPtr(nil))
}

func TestID(t *testing.T) {
	id := uuid.New()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := request.ID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	rctx.URLParams = chi.RouteParams{}
	rctx.URLParams.Add("id", "nope")

	_, err = request.ID(req, "id")

	var br *respond.BadRequest
	require.ErrorAs(t, err, &br)
}

func TestQuery(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?accountId="+id.String()+"&isPaid=true&startDate=2024-03-01&minAmount=12.5&page=3&search=%20food%20", nil)

	q := request.NewQuery(req)

	assert.Equal(t, id, *q.UUID("accountId"))
	assert.True(t, *q.Bool("isPaid"))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *q.Date("startDate"))
	assert.Equal(t, int64(1250), *q.Cents("minAmount"))
	assert.Equal(t, 3, q.Int("page", 1))
	assert.Equal(t, 20, q.Int("limit", 20))
	assert.Equal(t, "food", *q.String("search"))
	assert.Nil(t, q.UUID("creditCardId"))
	require.NoError(t, q.Err())

	bad := request.NewQuery(httptest.NewRequest(http.MethodGet, "/?endDate=03/01/2024&isPaid=maybe", nil))
	assert.Nil(t, bad.Date("endDate"))
	assert.Nil(t, bad.Bool("isPaid"))

	var br *respond.BadRequest
	require.ErrorAs(t, bad.Err(), &br)
	assert.Equal(t, "endDate", br.Details[0].Field)
}

func TestDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: `"2024-02-29"`, want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{in: `"2024-02-29T23:10:00Z"`, want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{in: `"29/02/2024"`, wantErr: true},
		{in: `20240229`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d request.Day

			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time))
		})
	}
}

func TestOptionalID(t *testing.T) {
	type body struct {
		GoalID request.OptionalID `json:"goalId"`
	}

	id := uuid.New()

	var absent, null, set body

	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"goalId":null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"goalId":"`+id.String()+`"}`), &set))

	assert.False(t, absent.GoalID.Set)

	assert.True(t, null.GoalID.Set)
	assert.Nil(t, null.GoalID.ID)

	assert.True(t, set.GoalID.Set)
	require.NotNil(t, set.GoalID.ID)
	assert.Equal(t, id, *set.GoalID.ID)

	var bad body
	assert.Error(t, json.Unmarshal([]byte(`{"goalId":"nope"}`), &bad))
}

func TestParse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?type=income&bad=x", nil)
	q := request.NewQuery(req)

	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
	failing := func(string) (int, error) { return 0, assert.AnError }

	assert.Equal(t, "INCOME", *request.Parse(q, "type", upper))
	assert.Nil(t, request.Parse(q, "missing", upper))
	require.NoError(t, q.Err())

	assert.Nil(t, request.Parse(q, "bad", failing))

	var br *respond.BadRequest
	require.ErrorAs(t, q.Err(), &br)
	assert.Equal(t, "bad", br.Details[0].Field)
}
