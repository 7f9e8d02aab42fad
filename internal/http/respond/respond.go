// Package respond writes the JSON envelope every API response is wrapped in.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/logger"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// BadRequest is a request that could not be decoded or failed field rules.
type BadRequest struct {
	Message string
	Details []FieldError
}

func (e *BadRequest) Error() string {
	return e.Message
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, envelope{Success: true, Data: data})
}

func Fail(w http.ResponseWriter, r *http.Request, status int, msg string, details ...FieldError) {
	write(w, r, status, envelope{Error: msg, Details: details})
}

// Error maps err to a status code. Unknown errors are logged and hidden
// behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		br *BadRequest
		ve *ledger.ValidationError
	)

	switch {
	case errors.As(err, &br):
		Fail(w, r, http.StatusBadRequest, br.Message, br.Details...)
	case errors.As(err, &ve):
		Fail(w, r, http.StatusBadRequest, ve.Error(), FieldError{Field: ve.Field, Message: ve.Message})
	case errors.Is(err, ledger.ErrNotFound):
		Fail(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		Fail(w, r, http.StatusUnprocessableEntity, "insufficient balance")
	case errors.Is(err, ledger.ErrConflict):
		Fail(w, r, http.StatusConflict, "the resource was modified or is still in use, retry the request")
	default:
		logger.FromContext(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
		Fail(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}
