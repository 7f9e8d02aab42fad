package account

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

type Handler struct {
	ledger *ledger.Service
	stats  *stats.Service
}

func NewHandler(l *ledger.Service, s *stats.Service) *Handler {
	return &Handler{ledger: l, stats: s}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.getStats)
	r.Post("/transfer", h.transfer)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createAccountRequest struct {
	Name    string       `json:"name" validate:"required,max=100"`
	Type    string       `json:"type" validate:"required"`
	Balance money.Amount `json:"balance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	typ, err := ledger.ParseAccountType(req.Type)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	acc, err := h.ledger.CreateAccount(r.Context(), auth.Owner(r.Context()), ledger.CreateAccountParams{
		Name:           request.Text(req.Name),
		Type:           typ,
		OpeningBalance: req.Balance.Cents(),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(acc))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := request.NewQuery(r)
	filter := query.AccountFilter{
		Type:       request.Parse(q, "type", ledger.ParseAccountType),
		IsActive:   q.Bool("isActive"),
		Search:     q.String("name"),
		MinBalance: q.Cents("minBalance"),
		MaxBalance: q.Cents("maxBalance"),
	}

	if err := q.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	accs, err := h.ledger.ListAccounts(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	accs = query.Accounts(accs, filter)

	resp := listResponse{
		Accounts:       toResponseList(accs),
		AccountsByType: make(map[string]int, len(ledger.AccountTypes)),
	}

	for _, t := range ledger.AccountTypes {
		resp.AccountsByType[typeKey(t)] = 0
	}

	for _, a := range accs {
		resp.TotalBalance += money.Amount(a.Balance)
		resp.AccountsByType[typeKey(a.Type)]++
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Accounts(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toStatsResponse(st))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	acc, err := h.ledger.GetAccount(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(acc))
}

type updateAccountRequest struct {
	Name     *string       `json:"name,omitempty" validate:"omitempty,max=100"`
	Type     *string       `json:"type,omitempty"`
	IsActive *bool         `json:"isActive,omitempty"`
	Balance  *money.Amount `json:"balance,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateAccountRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := ledger.UpdateAccountParams{
		Name:     request.TextPtr(req.Name),
		IsActive: req.IsActive,
	}

	if req.Type != nil {
		typ, err := ledger.ParseAccountType(*req.Type)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.Type = &typ
	}

	if req.Balance != nil {
		params.Balance = new(req.Balance.Cents())
	}

	acc, err := h.ledger.UpdateAccount(r.Context(), auth.Owner(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(acc))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.ledger.DeleteAccount(r.Context(), auth.Owner(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	FromAccountID uuid.UUID    `json:"fromAccountId" validate:"required"`
	ToAccountID   uuid.UUID    `json:"toAccountId" validate:"required"`
	Amount        money.Amount `json:"amount" validate:"gt=0"`
	Description   string       `json:"description" validate:"max=255"`
	Date          *request.Day `json:"date,omitempty"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := ledger.TransferParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount.Cents(),
		Description:   request.Text(req.Description),
	}

	if req.Date != nil {
		params.Date = req.Date.Time
	}

	res, err := h.ledger.Transfer(r.Context(), auth.Owner(r.Context()), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, transferResponse{
		FromAccount:    toResponse(res.From),
		ToAccount:      toResponse(res.To),
		TransferAmount: money.Amount(res.Amount),
		Description:    res.Description,
	})
}

func typeKey(t ledger.AccountType) string {
	return strings.ToLower(string(t))
}
