package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

type AccountsModel struct {
	CommonModel
	ledger *ledger.Service

	table    table.Model
	accounts []*ledger.Account
	loading  bool
	err      error
}

func NewAccountsModel(common CommonModel, l *ledger.Service) AccountsModel {
	return AccountsModel{
		CommonModel: common,
		ledger:      l,
		loading:     true,
		table: newTable([]table.Column{
			{Title: "Name", Width: 30},
			{Title: "Type", Width: 12},
			{Title: "Balance", Width: 16},
			{Title: "Active", Width: 8},
		}),
	}
}

func (m AccountsModel) Title() string     { return "Accounts" }
func (m AccountsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		m.err = msg.err
		m.accounts = msg.accounts
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var total int64
	for _, a := range m.accounts {
		if a.IsActive {
			total += a.Balance
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Total balance: "+activeStyle(FormatAmount(total))),
		framed(m.table.View()),
		faint(m.ShortHelp()),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.accounts))
	for _, a := range m.accounts {
		active := "yes"
		if !a.IsActive {
			active = "no"
		}

		rows = append(rows, table.Row{a.Name, string(a.Type), FormatAmount(a.Balance), active})
	}

	m.table.SetRows(rows)
}

type loadAccountsMsg struct {
	accounts []*ledger.Account
	err      error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.ledger.ListAccounts(ctx, m.Owner)

		return loadAccountsMsg{accounts: accounts, err: err}
	}
}
