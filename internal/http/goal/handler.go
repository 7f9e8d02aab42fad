package goal

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

type Handler struct {
	svc *goal.Service
}

func NewHandler(svc *goal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/progress", h.getProgress)
	r.Post("/{id}/progress", h.addProgress)
}

type progressResponse struct {
	Percentage    float64      `json:"percentage"`
	Remaining     money.Amount `json:"remainingAmount"`
	IsCompleted   bool         `json:"isCompleted"`
	DaysRemaining int          `json:"daysRemaining"`
}

type goalResponse struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	TargetAmount  money.Amount     `json:"targetAmount"`
	CurrentAmount money.Amount     `json:"currentAmount"`
	TargetDate    string           `json:"targetDate"`
	Progress      progressResponse `json:"progress"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func toProgressResponse(p goal.Progress) progressResponse {
	return progressResponse{
		Percentage:    p.Percentage,
		Remaining:     money.Amount(p.Remaining),
		IsCompleted:   p.IsCompleted,
		DaysRemaining: p.DaysRemaining,
	}
}

func toResponse(v *goal.View) goalResponse {
	return goalResponse{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		TargetAmount:  money.Amount(v.TargetAmount),
		CurrentAmount: money.Amount(v.CurrentAmount),
		TargetDate:    v.TargetDate.Format(time.DateOnly),
		Progress:      toProgressResponse(v.Progress),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type createGoalRequest struct {
	Title         string       `json:"title" validate:"required,max=100"`
	Description   string       `json:"description" validate:"max=255"`
	TargetAmount  money.Amount `json:"targetAmount" validate:"gt=0"`
	CurrentAmount money.Amount `json:"currentAmount" validate:"gte=0"`
	TargetDate    request.Day  `json:"targetDate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := h.svc.Create(r.Context(), auth.Owner(r.Context()), goal.CreateParams{
		Title:         request.Text(req.Title),
		Description:   request.Text(req.Description),
		TargetAmount:  req.TargetAmount.Cents(),
		CurrentAmount: req.CurrentAmount.Cents(),
		TargetDate:    req.TargetDate.Time,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(v))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]goalResponse, len(views))
	for i, v := range views {
		out[i] = toResponse(v)
	}

	respond.JSON(w, r, http.StatusOK, map[string]any{"goals": out, "total": len(out)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := h.svc.Get(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(v))
}

type updateGoalRequest struct {
	Title        *string       `json:"title,omitempty" validate:"omitempty,max=100"`
	Description  *string       `json:"description,omitempty" validate:"omitempty,max=255"`
	TargetAmount *money.Amount `json:"targetAmount,omitempty" validate:"omitempty,gt=0"`
	TargetDate   *request.Day  `json:"targetDate,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateGoalRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := goal.UpdateParams{
		Title:       request.TextPtr(req.Title),
		Description: request.TextPtr(req.Description),
		TargetDate:  req.TargetDate.Ptr(),
	}

	if req.TargetAmount != nil {
		params.TargetAmount = new(req.TargetAmount.Cents())
	}

	v, err := h.svc.Update(r.Context(), auth.Owner(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(v))
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

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := h.svc.Get(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toProgressResponse(v.Progress))
}

type addProgressRequest struct {
	Amount money.Amount `json:"amount" validate:"gt=0"`
}

func (h *Handler) addProgress(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req addProgressRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := h.svc.AddProgress(r.Context(), auth.Owner(r.Context()), id, req.Amount.Cents())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(v))
}
