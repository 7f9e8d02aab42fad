package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// PostgreSQL SQLSTATE codes the stores react to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
)

func code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

// IsRetryable reports whether the unit of work lost a race with another one
// and can be run again.
func IsRetryable(err error) bool {
	c := code(err)
	return c == codeSerializationFailure || c == codeDeadlockDetected
}

// IsForeignKeyViolation reports a missing referenced row on insert, or a
// delete blocked by rows still referencing it.
func IsForeignKeyViolation(err error) bool {
	return code(err) == codeForeignKeyViolation
}

func IsUniqueViolation(err error) bool {
	return code(err) == codeUniqueViolation
}

func IsCheckViolation(err error) bool {
	return code(err) == codeCheckViolation
}

// Wrap annotates err with op and maps driver failures onto the ledger error
// kinds: missing rows become ErrNotFound, lost races and blocked deletes
// become ErrConflict, check violations become a ValidationError.
func Wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ledger.ErrNotFound)
	case IsRetryable(err), IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ledger.ErrConflict, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: still referenced or missing reference: %w: %w", op, ledger.ErrConflict, err)
	case IsCheckViolation(err):
		return &ledger.ValidationError{Message: fmt.Sprintf("%s: rejected by constraint %s", op, constraint(err))}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	return ""
}
