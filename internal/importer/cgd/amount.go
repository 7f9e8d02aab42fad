package cgd

import (
	"strings"

	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

// parseEuropeanAmount reads "1.234,56" as 123456 cents.
func parseEuropeanAmount(s string) (int64, error) {
	a, err := money.Parse(strings.ReplaceAll(s, ".", ""))
	if err != nil {
		return 0, err
	}

	return a.Cents(), nil
}
