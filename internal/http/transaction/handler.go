package transaction

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/http/request"
	"github.com/MrJamesThe3rd/pennywise/internal/http/respond"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/logger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	ledger   *ledger.Service
	stats    *stats.Service
	export   *export.Service
	importer *importer.Service
}

func NewHandler(l *ledger.Service, s *stats.Service, e *export.Service, i *importer.Service) *Handler {
	return &Handler{ledger: l, stats: s, export: e, importer: i}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.getStats)
	r.Get("/dashboard", h.dashboard)
	r.Get("/export", h.exportCSV)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/toggle-paid", h.togglePaid)
	r.Post("/{id}/duplicate", h.duplicate)
}

type createTransactionRequest struct {
	Description        string       `json:"description" validate:"required,max=255"`
	Amount             money.Amount `json:"amount" validate:"gt=0"`
	Type               string       `json:"type" validate:"required"`
	Date               request.Day  `json:"date" validate:"required"`
	IsPaid             bool         `json:"isPaid"`
	Installments       *int         `json:"installments,omitempty" validate:"omitempty,gte=1,lte=999"`
	CurrentInstallment *int         `json:"currentInstallment,omitempty" validate:"omitempty,gte=1"`
	CategoryID         uuid.UUID    `json:"categoryId" validate:"required"`
	AccountID          *uuid.UUID   `json:"accountId,omitempty"`
	CreditCardID       *uuid.UUID   `json:"creditCardId,omitempty"`
	GoalID             *uuid.UUID   `json:"goalId,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	typ, err := ledger.ParseType(req.Type)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.ledger.CreateTransaction(r.Context(), auth.Owner(r.Context()), ledger.CreateParams{
		Description:        request.Text(req.Description),
		Amount:             req.Amount.Cents(),
		Type:               typ,
		Date:               req.Date.Time,
		IsPaid:             req.IsPaid,
		Installments:       req.Installments,
		CurrentInstallment: req.CurrentInstallment,
		CategoryID:         req.CategoryID,
		AccountID:          req.AccountID,
		CreditCardID:       req.CreditCardID,
		GoalID:             req.GoalID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(tx))
}

func filterFrom(q *request.Query) query.TransactionFilter {
	return query.TransactionFilter{
		Type:         request.Parse(q, "type", ledger.ParseType),
		CategoryID:   q.UUID("categoryId"),
		AccountID:    q.UUID("accountId"),
		CreditCardID: q.UUID("creditCardId"),
		Search:       q.String("description"),
		IsPaid:       q.Bool("isPaid"),
		StartDate:    q.Date("startDate"),
		EndDate:      q.Date("endDate"),
		MinAmount:    q.Cents("minAmount"),
		MaxAmount:    q.Cents("maxAmount"),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := request.NewQuery(r)
	filter := filterFrom(q)
	page := q.Int("page", 1)
	limit := q.Int("limit", query.DefaultLimit)

	if err := q.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.ledger.ListTransactions(r.Context(), auth.Owner(r.Context()), filter.Store())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs = query.Transactions(txs, filter)

	resp := listResponse{Total: len(txs)}

	for _, t := range txs {
		resp.TotalAmount += money.Amount(t.Amount)

		if t.IsPaid {
			resp.TotalPaid += money.Amount(t.Amount)
		} else {
			resp.TotalPending += money.Amount(t.Amount)
		}
	}

	pageItems, meta := query.Paginate(txs, page, limit)
	resp.Transactions = toResponseList(pageItems)
	resp.Pagination = meta

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.ledger.GetTransaction(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

type updateTransactionRequest struct {
	Description        *string            `json:"description,omitempty" validate:"omitempty,max=255"`
	Amount             *money.Amount      `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Type               *string            `json:"type,omitempty"`
	Date               *request.Day       `json:"date,omitempty"`
	IsPaid             *bool              `json:"isPaid,omitempty"`
	Installments       *int               `json:"installments,omitempty" validate:"omitempty,gte=1,lte=999"`
	CurrentInstallment *int               `json:"currentInstallment,omitempty" validate:"omitempty,gte=1"`
	CategoryID         *uuid.UUID         `json:"categoryId,omitempty"`
	AccountID          request.OptionalID `json:"accountId"`
	CreditCardID       request.OptionalID `json:"creditCardId"`
	GoalID             request.OptionalID `json:"goalId"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := ledger.UpdateParams{
		Description:        request.TextPtr(req.Description),
		Date:               req.Date.Ptr(),
		IsPaid:             req.IsPaid,
		Installments:       req.Installments,
		CurrentInstallment: req.CurrentInstallment,
		CategoryID:         req.CategoryID,
		AccountID:          ledger.Ref{Set: req.AccountID.Set, ID: req.AccountID.ID},
		CreditCardID:       ledger.Ref{Set: req.CreditCardID.Set, ID: req.CreditCardID.ID},
		GoalID:             ledger.Ref{Set: req.GoalID.Set, ID: req.GoalID.ID},
	}

	if req.Amount != nil {
		params.Amount = new(req.Amount.Cents())
	}

	if req.Type != nil {
		typ, err := ledger.ParseType(*req.Type)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.Type = &typ
	}

	tx, err := h.ledger.UpdateTransaction(r.Context(), auth.Owner(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), auth.Owner(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) togglePaid(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.ledger.TogglePaid(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(tx))
}

func (h *Handler) duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.ledger.DuplicateTransaction(r.Context(), auth.Owner(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(tx))
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Transactions(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toStatsResponse(st))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.stats.Dashboard(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toDashboardResponse(d))
}

// exportCSV buffers the file so a failure can still be reported as JSON.
func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	q := request.NewQuery(r)
	filter := filterFrom(q)

	if err := q.Err(); err != nil {
		respond.Error(w, r, err)
		return
	}

	owner := auth.Owner(r.Context())

	var buf bytes.Buffer

	n, err := h.export.WriteCSV(r.Context(), owner, filter, &buf)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("transactions exported", "rows", n)

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format(time.DateOnly))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Error("failed to write export", "error", err)
	}
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(w, r, &respond.BadRequest{Message: "failed to parse form: " + err.Error()})
		return
	}

	bank, err := importer.ParseBank(r.FormValue("bank"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params, err := importParams(r, bank)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, &respond.BadRequest{Message: "file field is required"})
		return
	}
	defer file.Close()

	owner := auth.Owner(r.Context())

	if dryRun, _ := strconv.ParseBool(r.FormValue("dryRun")); dryRun {
		rows, skipped, err := h.importer.Preview(r.Context(), owner, params, file)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, r, http.StatusOK, toPreviewResponse(rows, skipped))

		return
	}

	res, err := h.importer.Import(r.Context(), owner, params, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, importResponse{
		Imported:     res.Imported,
		Skipped:      res.Skipped,
		Transactions: toResponseList(res.Transactions),
	})
}

// importParams reads the target and default categories. markPaid defaults
// to true: statement rows have already settled.
func importParams(r *http.Request, bank importer.Bank) (importer.Params, error) {
	params := importer.Params{Bank: bank, MarkPaid: true}

	ids := map[string]**uuid.UUID{
		"accountId":         &params.AccountID,
		"creditCardId":      &params.CreditCardID,
		"incomeCategoryId":  &params.IncomeCategoryID,
		"expenseCategoryId": &params.ExpenseCategoryID,
	}

	for field, dst := range ids {
		v := r.FormValue(field)
		if v == "" {
			continue
		}

		id, err := uuid.Parse(v)
		if err != nil {
			return params, &respond.BadRequest{Message: "invalid " + field, Details: []respond.FieldError{{Field: field, Message: "is invalid"}}}
		}

		*dst = &id
	}

	if v := r.FormValue("markPaid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return params, &respond.BadRequest{Message: "invalid markPaid", Details: []respond.FieldError{{Field: "markPaid", Message: "is invalid"}}}
		}

		params.MarkPaid = paid
	}

	return params, nil
}
