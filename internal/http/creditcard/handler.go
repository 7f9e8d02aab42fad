package creditcard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/billing"
	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/stats", h.getStats)
}

type creditCardResponse struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Limit      money.Amount `json:"limit"`
	ClosingDay int          `json:"closingDay"`
	DueDay     int          `json:"dueDay"`
	IsActive   bool         `json:"isActive"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

type statsResponse struct {
	CreditCard           creditCardResponse `json:"creditCard"`
	CycleStart           string             `json:"cycleStart"`
	CycleEnd             string             `json:"cycleEnd"`
	DueDate              string             `json:"dueDate"`
	TotalSpent           money.Amount       `json:"totalSpent"`
	AvailableLimit       money.Amount       `json:"availableLimit"`
	LimitUsagePercentage float64            `json:"limitUsagePercentage"`
	TransactionsCount    int                `json:"transactionsCount"`
}

func toResponse(c *ledger.CreditCard) creditCardResponse {
	return creditCardResponse{
		ID:         c.ID,
		Name:       c.Name,
		Limit:      money.Amount(c.Limit),
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type createCardRequest struct {
	Name       string       `json:"name" validate:"required,max=100"`
	Limit      money.Amount `json:"limit" validate:"gt=0"`
	ClosingDay int          `json:"closingDay" validate:"gte=1,lte=31"`
	DueDay     int          `json:"dueDay" validate:"gte=1,lte=31"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	card, err := h.svc.Create(r.Context(), auth.Owner(r.Context()), billing.CreateParams{
		Name:       request.Text(req.Name),
		Limit:      req.Limit.Cents(),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(card))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.List(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]creditCardResponse, len(cards))
	for i, c := range cards {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, r, http.StatusOK, map[string]any{
		"creditCards": resp,
		"total":       len(resp),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	card, err := h.svc.Get(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(card))
}

type updateCardRequest struct {
	Name       *string       `json:"name,omitempty" validate:"omitempty,max=100"`
	Limit      *money.Amount `json:"limit,omitempty" validate:"omitempty,gt=0"`
	ClosingDay *int          `json:"closingDay,omitempty" validate:"omitempty,gte=1,lte=31"`
	DueDay     *int          `json:"dueDay,omitempty" validate:"omitempty,gte=1,lte=31"`
	IsActive   *bool         `json:"isActive,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateCardRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := billing.UpdateParams{
		Name:       request.TextPtr(req.Name),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		IsActive:   req.IsActive,
	}

	if req.Limit != nil {
		params.Limit = new(req.Limit.Cents())
	}

	card, err := h.svc.Update(r.Context(), auth.Owner(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(card))
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

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	st, err := h.svc.Stats(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, statsResponse{
		CreditCard:           toResponse(st.Card),
		CycleStart:           st.Cycle.Start.Format(time.DateOnly),
		CycleEnd:             st.Cycle.End.Format(time.DateOnly),
		DueDate:              st.Cycle.Due.Format(time.DateOnly),
		TotalSpent:           money.Amount(st.TotalSpent),
		AvailableLimit:       money.Amount(st.AvailableLimit),
		LimitUsagePercentage: st.LimitUsagePercentage,
		TransactionsCount:    st.TransactionsCount,
	})
}
