package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.getStats)
	r.Post("/default", h.createDefaults)
	r.Get("/rules", h.suggest)
	r.Post("/rules", h.learn)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        ledger.Type `json:"type"`
	Color       string      `json:"color,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type listResponse struct {
	Categories []categoryResponse `json:"categories"`
	Total      int                `json:"total"`
}

func toResponse(c *ledger.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		Color:       c.Color,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toListResponse(cats []*ledger.Category) listResponse {
	resp := listResponse{Categories: make([]categoryResponse, len(cats)), Total: len(cats)}
	for i, c := range cats {
		resp.Categories[i] = toResponse(c)
	}

	return resp
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
	Type        string `json:"type" validate:"required"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Icon        string `json:"icon" validate:"max=50"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	typ, err := ledger.ParseType(req.Type)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), auth.Owner(r.Context()), category.CreateParams{
		Name:        request.Text(req.Name),
		Description: request.Text(req.Description),
		Type:        typ,
		Color:       req.Color,
		Icon:        request.Text(req.Icon),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := request.NewQuery(r)
	filter := query.CategoryFilter{
		Type:     request.Parse(q, "type", ledger.ParseType),
		IsActive: q.Bool("isActive"),
		Search:   q.String("search"),
	}

	if err := q.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	cats, err := h.svc.List(r.Context(), auth.Owner(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toListResponse(cats))
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]int{
		"totalCategories":    st.TotalCategories,
		"incomeCategories":   st.IncomeCategories,
		"expenseCategories":  st.ExpenseCategories,
		"activeCategories":   st.ActiveCategories,
		"inactiveCategories": st.InactiveCategories,
	})
}

func (h *Handler) createDefaults(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.CreateDefaults(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toListResponse(created))
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	q := request.NewQuery(r)
	desc := q.String("description")
	typ := request.Parse(q, "type", ledger.ParseType)

	if err := q.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	if desc == nil || typ == nil {
		respond.Fail(w, r, http.StatusBadRequest, "description and type are required")
		return
	}

	id, err := h.svc.Suggest(r.Context(), auth.Owner(r.Context()), *desc, *typ)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var categoryID *uuid.UUID
	if id != uuid.Nil {
		categoryID = &id
	}

	respond.JSON(w, r, http.StatusOK, map[string]*uuid.UUID{"categoryId": categoryID})
}

type learnRequest struct {
	Pattern    string    `json:"pattern" validate:"required,min=3,max=100"`
	CategoryID uuid.UUID `json:"categoryId" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), auth.Owner(r.Context()), request.Text(req.Pattern), req.CategoryID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Get(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(c))
}

type updateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Type        *string `json:"type,omitempty"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateCategoryRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := category.UpdateParams{
		Name:        request.TextPtr(req.Name),
		Description: request.TextPtr(req.Description),
		Color:       req.Color,
		Icon:        request.TextPtr(req.Icon),
		IsActive:    req.IsActive,
	}

	if req.Type != nil {
		typ, err := ledger.ParseType(*req.Type)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.Type = &typ
	}

	c, err := h.svc.Update(r.Context(), auth.Owner(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(c))
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
