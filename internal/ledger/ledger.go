package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountType classifies where the money of an account is held.
type AccountType string

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountInvestment AccountType = "INVESTMENT"
	AccountCash       AccountType = "CASH"
)

var AccountTypes = []AccountType{AccountChecking, AccountSavings, AccountInvestment, AccountCash}

// ParseAccountType accepts any letter case.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AccountTypes {
		if t == known {
			return t, nil
		}
	}

	return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown account type %q", s)}
}

// Type is the direction of a transaction. It also classifies categories.
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeIncome, TypeExpense:
		return t, nil
	default:
		return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown transaction type %q", s)}
	}
}

// Account holds a running balance in cents. Balance only changes through
// transactions and transfers; Version increases on every balance write.
type Account struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Type      AccountType
	Balance   int64 // Balance in cents
	IsActive  bool
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreditCard struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Limit      int64 // Limit in cents
	ClosingDay int
	DueDay     int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category groups transactions of a single Type. Color and Icon are opaque.
type Category struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	Type        Type
	Color       string
	Icon        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transaction is a single income or expense. Amount is always positive, the
// sign comes from Type.
type Transaction struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	Description        string
	Amount             int64 // Amount in cents
	Type               Type
	Date               time.Time
	IsPaid             bool
	Installments       *int
	CurrentInstallment *int
	CategoryID         uuid.UUID
	AccountID          *uuid.UUID
	CreditCardID       *uuid.UUID
	GoalID             *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone returns a deep copy of t.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Installments = clonePtr(t.Installments)
	c.CurrentInstallment = clonePtr(t.CurrentInstallment)
	c.AccountID = clonePtr(t.AccountID)
	c.CreditCardID = clonePtr(t.CreditCardID)
	c.GoalID = clonePtr(t.GoalID)

	return &c
}

// Transfer moves Amount from one account to another of the same owner.
type Transfer struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        int64
	Description   string
	Date          time.Time
	CreatedAt     time.Time
}

// DateOnly drops the clock part of t, keeping its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
