package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pennywise/internal/billing"
)

// CardsModel lists the current statement cycle of every active card.
type CardsModel struct {
	CommonModel
	billing *billing.Service

	table   table.Model
	stats   []*billing.Stats
	loading bool
	err     error
}

func NewCardsModel(common CommonModel, b *billing.Service) CardsModel {
	return CardsModel{
		CommonModel: common,
		billing:     b,
		loading:     true,
		table: newTable([]table.Column{
			{Title: "Card", Width: 20},
			{Title: "Cycle", Width: 24},
			{Title: "Due", Width: 12},
			{Title: "Spent", Width: 14},
			{Title: "Available", Width: 14},
			{Title: "Usage", Width: 8},
		}),
	}
}

func (m CardsModel) Title() string     { return "Credit Cards" }
func (m CardsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m CardsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CardsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCardsMsg:
		m.loading = false
		m.err = msg.err
		m.stats = msg.stats
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

func (m CardsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading cards...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.stats) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No active credit cards.\n\n" + faint(m.ShortHelp()))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, framed(m.table.View()), faint(m.ShortHelp())),
	)
}

func (m *CardsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.stats))
	for _, s := range m.stats {
		rows = append(rows, table.Row{
			s.Card.Name,
			FormatDate(s.Cycle.Start) + " → " + FormatDate(s.Cycle.End),
			FormatDate(s.Cycle.Due),
			FormatAmount(s.TotalSpent),
			FormatAmount(s.AvailableLimit),
			fmt.Sprintf("%.0f%%", s.LimitUsagePercentage),
		})
	}

	m.table.SetRows(rows)
}

type loadCardsMsg struct {
	stats []*billing.Stats
	err   error
}

func (m CardsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.billing.AllStats(ctx, m.Owner)

		return loadCardsMsg{stats: stats, err: err}
	}
}
