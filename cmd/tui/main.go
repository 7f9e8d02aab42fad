package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pennywise/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pennywise/internal/billing"
	billingStore "github.com/MrJamesThe3rd/pennywise/internal/billing/store"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/pennywise/internal/ledger/store"
	"github.com/MrJamesThe3rd/pennywise/internal/logger"
)

type model struct {
	common         view.CommonModel
	ledgerService  *ledger.Service
	billingService *billing.Service

	currentView View

	accountsView     view.AccountsModel
	transactionsView view.TransactionsModel
	transferView     view.TransferModel
	cardsView        view.CardsModel
}

type View int

const (
	ViewMenu         View = 0
	ViewAccounts     View = 1
	ViewTransactions View = 2
	ViewTransfer     View = 3
	ViewCards        View = 4
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewAccounts
				m.accountsView = view.NewAccountsModel(m.common, m.ledgerService)

				return m, m.accountsView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.common, m.ledgerService)

				return m, m.transactionsView.Init()
			case "3":
				m.currentView = ViewTransfer
				m.transferView = view.NewTransferModel(m.common, m.ledgerService)

				return m, m.transferView.Init()
			case "4":
				m.currentView = ViewCards
				m.cardsView = view.NewCardsModel(m.common, m.billingService)

				return m, m.cardsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewAccounts:
		var newModel tea.Model
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewTransfer:
		var newModel tea.Model
		newModel, cmd = m.transferView.Update(msg)
		m.transferView = newModel.(view.TransferModel)
	case ViewCards:
		var newModel tea.Model
		newModel, cmd = m.cardsView.Update(msg)
		m.cardsView = newModel.(view.CardsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Pennywise\n\n" +
				"1. Accounts\n" +
				"2. Transactions\n" +
				"3. Transfer\n" +
				"4. Credit Cards\n\n" +
				"q. Quit",
		)
	case ViewAccounts:
		return m.accountsView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewTransfer:
		return m.transferView.View()
	case ViewCards:
		return m.cardsView.View()
	}

	return "Unknown View"
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// stdout belongs to the terminal UI.
	logger.Init(os.Stderr, cfg.App.LogLevel)

	owner, err := uuid.Parse(cfg.TUI.OwnerID)
	if err != nil {
		slog.Error("TUI_OWNER_ID must be a valid uuid", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher events.Publisher = events.Noop{}

	if cfg.AMQP.URL != "" {
		amqp, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			slog.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer amqp.Close()

		publisher = amqp
	}

	ledgerRepo := ledgerStore.New(db)

	m := model{
		common:         view.CommonModel{Owner: owner},
		ledgerService:  ledger.NewService(ledgerRepo, ledger.WithPublisher(publisher)),
		billingService: billing.NewService(billingStore.New(db), ledgerRepo, publisher),
		currentView:    ViewMenu,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
