package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

var (
	typeFilterLabels = []string{"All", "Income", "Expense"}
	dateFilterLabels = []string{"This Month", "Last Month", "All Time"}
)

type TransactionsModel struct {
	CommonModel
	ledger *ledger.Service

	table   table.Model
	txs     []*ledger.Transaction
	filter  ledger.ListFilter
	loading bool
	err     error
	status  string

	typeFilterIdx int
	dateFilterIdx int
	now           func() time.Time
}

func NewTransactionsModel(common CommonModel, l *ledger.Service) TransactionsModel {
	m := TransactionsModel{
		CommonModel: common,
		ledger:      l,
		loading:     true,
		now:         time.Now,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Type", Width: 9},
			{Title: "Amount", Width: 14},
			{Title: "Paid", Width: 6},
			{Title: "Description", Width: 40},
		}),
	}
	m.applyFilter()

	return m
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	return "Esc: back | t: type filter | d: date filter | p: toggle paid | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()

		if msg.err == nil && len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case togglePaidMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("%q marked %s.", msg.tx.Description, paidLabel(msg.tx.IsPaid))

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilterLabels)
			m.applyFilter()

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilterLabels)
			m.applyFilter()

			return m, m.loadCmd()
		case "p":
			return m, m.togglePaidCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var income, expense int64

	for _, t := range m.txs {
		if t.Type == ledger.TypeIncome {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s\nIncome: %s  Expense: %s",
		activeStyle(typeFilterLabels[m.typeFilterIdx]),
		activeStyle(dateFilterLabels[m.dateFilterIdx]),
		FormatAmount(income),
		FormatAmount(expense),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		framed(m.table.View()),
		faint(m.ShortHelp()),
	)

	if m.status != "" {
		content = faint(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *TransactionsModel) applyFilter() {
	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(ledger.TypeIncome)
	case 2:
		m.filter.Type = new(ledger.TypeExpense)
	default:
		m.filter.Type = nil
	}

	switch m.dateFilterIdx {
	case 0, 1:
		start, end := MonthRange(m.now(), -m.dateFilterIdx)
		m.filter.StartDate = &start
		m.filter.EndDate = &end
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, t := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(t.Date),
			string(t.Type),
			FormatAmount(t.Amount),
			paidLabel(t.IsPaid),
			t.Description,
		})
	}

	m.table.SetRows(rows)
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}

	return "pending"
}

type loadTxsMsg struct {
	txs []*ledger.Transaction
	err error
}

func (m TransactionsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.ledger.ListTransactions(ctx, m.Owner, filter)

		return loadTxsMsg{txs: txs, err: err}
	}
}

type togglePaidMsg struct {
	tx  *ledger.Transaction
	err error
}

func (m TransactionsModel) togglePaidCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	id := m.txs[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.ledger.TogglePaid(ctx, m.Owner, id)

		return togglePaidMsg{tx: tx, err: err}
	}
}
