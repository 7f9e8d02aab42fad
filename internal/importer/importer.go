// Package importer turns bank statement files into ledger transactions.
package importer

import (
	"io"
	"strings"

	"github.com/MrJamesThe3rd/pennywise/internal/importer/statement"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

// Banks lists every statement format with a parser.
var Banks = []Bank{BankCGD}

// ParseBank reads a bank name case-insensitively.
func ParseBank(s string) (Bank, error) {
	b := Bank(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Banks {
		if b == known {
			return b, nil
		}
	}

	return "", &ledger.ValidationError{Field: "bank", Message: "unsupported bank"}
}

type Parser interface {
	Parse(r io.Reader) ([]statement.Line, error)
}
