package view

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Portuguese)

// FormatAmount renders cents as euros, e.g. 123456 -> "€ 1234.56".
func FormatAmount(cents int64) string {
	return printer.Sprint(currency.Symbol(currency.EUR.Amount(float64(cents) / 100)))
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// MonthRange returns the first and last day of the month containing t,
// shifted by offset months.
func MonthRange(t time.Time, offset int) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
