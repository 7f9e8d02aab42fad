package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxInstallments = 999
	maxNameLength   = 100
	maxDescLength   = 255
)

func validateName(field, name string, max int) error {
	if strings.TrimSpace(name) == "" {
		return invalid(field, "is required")
	}

	if utf8.RuneCountInString(name) > max {
		return invalid(field, fmt.Sprintf("must be at most %d characters", max))
	}

	return nil
}

func (a *Account) Validate() error {
	if err := validateName("name", a.Name, maxNameLength); err != nil {
		return err
	}

	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return err
	}

	return nil
}

func (c *CreditCard) Validate() error {
	if err := validateName("name", c.Name, maxNameLength); err != nil {
		return err
	}

	if c.Limit <= 0 {
		return invalid("limit", "must be greater than zero")
	}

	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return invalid("closingDay", "must be between 1 and 31")
	}

	if c.DueDay < 1 || c.DueDay > 31 {
		return invalid("dueDay", "must be between 1 and 31")
	}

	return nil
}

func (c *Category) Validate() error {
	if err := validateName("name", c.Name, maxNameLength); err != nil {
		return err
	}

	if c.Type != TypeIncome && c.Type != TypeExpense {
		return invalid("type", "must be INCOME or EXPENSE")
	}

	return nil
}

// Validate checks the rules a transaction must satisfy on its own. Whether the
// referenced rows exist is checked by the Service inside the unit of work.
func (t *Transaction) Validate() error {
	if err := validateName("description", t.Description, maxDescLength); err != nil {
		return err
	}

	if t.Amount <= 0 {
		return invalid("amount", "must be greater than zero")
	}

	if t.Date.IsZero() {
		return invalid("date", "is required")
	}

	if t.CategoryID == uuid.Nil {
		return invalid("categoryId", "is required")
	}

	switch t.Type {
	case TypeIncome:
		if t.AccountID == nil {
			return invalid("accountId", "is required for income")
		}

		if t.CreditCardID != nil {
			return invalid("creditCardId", "is not allowed for income")
		}
	case TypeExpense:
		if (t.AccountID == nil) == (t.CreditCardID == nil) {
			return invalid("accountId", "exactly one of accountId or creditCardId is required for expenses")
		}
	default:
		return invalid("type", "must be INCOME or EXPENSE")
	}

	if t.Installments != nil {
		if *t.Installments < 1 || *t.Installments > MaxInstallments {
			return invalid("installments", fmt.Sprintf("must be between 1 and %d", MaxInstallments))
		}
	}

	if t.CurrentInstallment != nil {
		if t.Installments == nil {
			return invalid("currentInstallment", "requires installments")
		}

		if *t.CurrentInstallment < 1 || *t.CurrentInstallment > *t.Installments {
			return invalid("currentInstallment", "must be between 1 and installments")
		}
	}

	return nil
}
