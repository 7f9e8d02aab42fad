// Package cgd reads the CSV exports of Caixa Geral de Depósitos.
package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/pennywise/internal/importer/statement"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

var dateLayouts = []string{"02-01-2006", "02/01/2006"}

// Parser picks the export layout (conta, extrato, cartão) by matching the
// header row against known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]statement.Line, error) {
	utf8r, charset, err := statement.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	slog.Debug("parsing CGD statement", "profile", profile.Name, "charset", charset, "rows", len(rows)-headerIdx-1)

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex, len(row))

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].matches(cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// parseRows skips rows without a date or a non-zero amount (page footers,
// totals). headerRow is the 0-based header position, used in errors.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRow int) ([]statement.Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	lines := make([]statement.Line, 0, len(rows))

	for i, row := range rows {
		date, ok := parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", headerRow+i+2)
		}

		amount, typ, ok := p.amount(cols, row)
		if !ok {
			continue
		}

		lines = append(lines, statement.Line{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Type:        typ,
		})
	}

	return lines, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (p *Profile) amount(cols colIndex, row []string) (int64, ledger.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		cents, ok := cellAmount(row, cols[p.AmountCol])
		if !ok {
			return 0, "", false
		}

		if cents < 0 {
			return -cents, ledger.TypeExpense, true
		}

		return cents, ledger.TypeIncome, true
	case amountSplit:
		if cents, ok := cellAmount(row, cols[p.DebitCol]); ok {
			return abs(cents), ledger.TypeExpense, true
		}

		if cents, ok := cellAmount(row, cols[p.CreditCol]); ok {
			return abs(cents), ledger.TypeIncome, true
		}
	}

	return 0, "", false
}

// cellAmount reports false for empty, malformed and zero amounts.
func cellAmount(row []string, idx int) (int64, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, false
	}

	cents, err := parseEuropeanAmount(s)
	if err != nil || cents == 0 {
		return 0, false
	}

	return cents, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
