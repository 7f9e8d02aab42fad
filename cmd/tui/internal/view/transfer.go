package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

type TransferModel struct {
	CommonModel
	ledger *ledger.Service

	form    *huh.Form
	loading bool
	status  string
	err     error

	fields *transferFields
}

// transferFields is shared by every copy of the model so the form writes
// where submitCmd reads.
type transferFields struct {
	fromID uuid.UUID
	toID   uuid.UUID
	amount string
	desc   string
}

func NewTransferModel(common CommonModel, l *ledger.Service) TransferModel {
	return TransferModel{CommonModel: common, ledger: l, loading: true, fields: &transferFields{}}
}

func (m TransferModel) Title() string     { return "Transfer" }
func (m TransferModel) ShortHelp() string { return "Esc: back | Enter/Tab: navigate form" }

func (m TransferModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m TransferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case transferAccountsMsg:
		m.loading = false

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		if len(msg.accounts) < 2 {
			m.err = errors.New("at least two active accounts are needed for a transfer")
			return m, nil
		}

		cmd := m.buildForm(msg.accounts)

		return m, cmd

	case transferDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Transfer failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Moved %s from %s to %s.",
				FormatAmount(msg.res.Amount), msg.res.From.Name, msg.res.To.Name)
		}

		return m, m.loadAccountsCmd()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	submit := m.submitCmd()
	m.form = nil
	m.loading = true

	return m, submit
}

func (m TransferModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n%s", m.err, faint("Esc: back")))
	}

	panel := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(52).
		Render("Transfer between accounts\n\n" + m.form.View())

	content := lipgloss.JoinVertical(lipgloss.Left, panel, faint(m.ShortHelp()))
	if m.status != "" {
		content = faint(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *TransferModel) buildForm(accounts []*ledger.Account) tea.Cmd {
	options := make([]huh.Option[uuid.UUID], len(accounts))
	for i, a := range accounts {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, FormatAmount(a.Balance)), a.ID)
	}

	f := m.fields
	f.fromID, f.toID = accounts[0].ID, accounts[1].ID
	f.amount, f.desc = "", ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("From").
				Options(options...).
				Value(&f.fromID),

			huh.NewSelect[uuid.UUID]().
				Title("To").
				Options(options...).
				Value(&f.toID).
				Validate(func(id uuid.UUID) error {
					if id == f.fromID {
						return errors.New("pick a different account")
					}

					return nil
				}),

			huh.NewInput().
				Title("Amount").
				Placeholder("0,00").
				Value(&f.amount).
				Validate(func(s string) error {
					a, err := money.Parse(s)
					if err != nil || a <= 0 {
						return errors.New("enter a positive amount")
					}

					return nil
				}),

			huh.NewInput().
				Title("Description").
				Value(&f.desc),
		),
	).WithWidth(48).WithShowHelp(false)

	return m.form.Init()
}

type transferAccountsMsg struct {
	accounts []*ledger.Account
	err      error
}

func (m TransferModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		all, err := m.ledger.ListAccounts(ctx, m.Owner)
		if err != nil {
			return transferAccountsMsg{err: err}
		}

		active := make([]*ledger.Account, 0, len(all))
		for _, a := range all {
			if a.IsActive {
				active = append(active, a)
			}
		}

		return transferAccountsMsg{accounts: active}
	}
}

type transferDoneMsg struct {
	res *ledger.TransferResult
	err error
}

func (m TransferModel) submitCmd() tea.Cmd {
	f := m.fields

	amount, err := money.Parse(f.amount)
	if err != nil {
		return func() tea.Msg { return transferDoneMsg{err: err} }
	}

	params := ledger.TransferParams{
		FromAccountID: f.fromID,
		ToAccountID:   f.toID,
		Amount:        amount.Cents(),
		Description:   strings.TrimSpace(f.desc),
		Date:          time.Now(),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.ledger.Transfer(ctx, m.Owner, params)

		return transferDoneMsg{res: res, err: err}
	}
}
