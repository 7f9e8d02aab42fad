package budget

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/month/{month}/year/{year}", h.getByMonth)
	r.Put("/month/{month}/year/{year}/update-spent", h.refreshSpent)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type itemResponse struct {
	CategoryID uuid.UUID    `json:"categoryId"`
	Planned    money.Amount `json:"plannedAmount"`
	Spent      money.Amount `json:"spentAmount"`
	Remaining  money.Amount `json:"remaining"`
	Percentage float64      `json:"percentage"`
}

type budgetResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Month      int            `json:"month"`
	Year       int            `json:"year"`
	Amount     money.Amount   `json:"amount"`
	Spent      money.Amount   `json:"spentAmount"`
	Remaining  money.Amount   `json:"remaining"`
	Percentage float64        `json:"percentage"`
	Items      []itemResponse `json:"items"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func toResponse(b *budget.Budget) budgetResponse {
	p := budget.ComputeProgress(b)

	items := make([]itemResponse, len(p.Items))
	for i, it := range p.Items {
		items[i] = itemResponse{
			CategoryID: it.CategoryID,
			Planned:    money.Amount(it.Planned),
			Spent:      money.Amount(it.Spent),
			Remaining:  money.Amount(it.Remaining),
			Percentage: it.Percentage,
		}
	}

	return budgetResponse{
		ID:         b.ID,
		Name:       b.Name,
		Month:      b.Month,
		Year:       b.Year,
		Amount:     money.Amount(p.Amount),
		Spent:      money.Amount(p.Spent),
		Remaining:  money.Amount(p.Remaining),
		Percentage: p.Percentage,
		Items:      items,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type itemRequest struct {
	CategoryID uuid.UUID    `json:"categoryId" validate:"required"`
	Planned    money.Amount `json:"plannedAmount" validate:"gte=0"`
}

func toItemParams(items []itemRequest) []budget.ItemParams {
	out := make([]budget.ItemParams, len(items))
	for i, it := range items {
		out[i] = budget.ItemParams{CategoryID: it.CategoryID, Planned: it.Planned.Cents()}
	}

	return out
}

type createBudgetRequest struct {
	Name   string        `json:"name" validate:"required,max=100"`
	Month  int           `json:"month" validate:"gte=1,lte=12"`
	Year   int           `json:"year" validate:"gte=1900,lte=9999"`
	Amount money.Amount  `json:"amount" validate:"gte=0"`
	Items  []itemRequest `json:"items" validate:"dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), auth.Owner(r.Context()), budget.CreateParams{
		Name:   request.Text(req.Name),
		Month:  req.Month,
		Year:   req.Year,
		Amount: req.Amount.Cents(),
		Items:  toItemParams(req.Items),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := request.NewQuery(r)

	var year *int
	if q.String("year") != nil {
		year = new(q.Int("year", 0))
	}

	if err := q.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	budgets, err := h.svc.List(r.Context(), auth.Owner(r.Context()), year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = toResponse(b)
	}

	respond.JSON(w, r, http.StatusOK, map[string]any{"budgets": out, "total": len(out)})
}

func monthParams(r *http.Request) (int, int, error) {
	month, err := request.PathInt(r, "month")
	if err != nil {
		return 0, 0, err
	}

	year, err := request.PathInt(r, "year")
	if err != nil {
		return 0, 0, err
	}

	return month, year, nil
}

func (h *Handler) getByMonth(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.GetByMonth(r.Context(), auth.Owner(r.Context()), month, year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(b))
}

func (h *Handler) refreshSpent(w http.ResponseWriter, r *http.Request) {
	month, year, err := monthParams(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.RefreshSpent(r.Context(), auth.Owner(r.Context()), month, year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(b))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(b))
}

type updateBudgetRequest struct {
	Name   *string        `json:"name,omitempty" validate:"omitempty,max=100"`
	Amount *money.Amount  `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Items  *[]itemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateBudgetRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := budget.UpdateParams{Name: request.TextPtr(req.Name)}

	if req.Amount != nil {
		params.Amount = new(req.Amount.Cents())
	}

	if req.Items != nil {
		params.Items = new(toItemParams(*req.Items))
	}

	b, err := h.svc.Update(r.Context(), auth.Owner(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.Owner(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
