package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"

	"github.com/MrJamesThe3rd/pennywise/internal/auth"
	"github.com/MrJamesThe3rd/pennywise/internal/billing"
	billingStore "github.com/MrJamesThe3rd/pennywise/internal/billing/store"
	"github.com/MrJamesThe3rd/pennywise/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/pennywise/internal/budget/store"
	"github.com/MrJamesThe3rd/pennywise/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pennywise/internal/category/store"
	"github.com/MrJamesThe3rd/pennywise/internal/config"
	"github.com/MrJamesThe3rd/pennywise/internal/database"
	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/export"
	"github.com/MrJamesThe3rd/pennywise/internal/goal"
	goalStore "github.com/MrJamesThe3rd/pennywise/internal/goal/store"
	pennyHttp "github.com/MrJamesThe3rd/pennywise/internal/http"
	accountHandler "github.com/MrJamesThe3rd/pennywise/internal/http/account"
	budgetHandler "github.com/MrJamesThe3rd/pennywise/internal/http/budget"
	categoryHandler "github.com/MrJamesThe3rd/pennywise/internal/http/category"
	cardHandler "github.com/MrJamesThe3rd/pennywise/internal/http/creditcard"
	goalHandler "github.com/MrJamesThe3rd/pennywise/internal/http/goal"
	txHandler "github.com/MrJamesThe3rd/pennywise/internal/http/transaction"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/pennywise/internal/ledger/store"
	"github.com/MrJamesThe3rd/pennywise/internal/logger"
	"github.com/MrJamesThe3rd/pennywise/internal/stats"
)

func main() {
	issueFor := flag.String("issue-token", "", "print a bearer token for the given owner id and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(os.Stdout, cfg.App.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	issuer := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	if *issueFor != "" {
		if err := printToken(issuer, *issueFor); err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}

		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, issuer); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func printToken(issuer *auth.Issuer, raw string) error {
	owner, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing owner id: %w", err)
	}

	token, err := issuer.NewToken(owner)
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}

func run(ctx context.Context, cfg *config.Config, issuer *auth.Issuer) error {
	connStr := cfg.ConnectionString()

	if err := database.Migrate(connStr); err != nil {
		return err
	}

	db, err := database.New(ctx, connStr, database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	var bus events.Publisher = events.Noop{}

	if cfg.AMQP.URL != "" {
		amqp, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer amqp.Close()

		bus = amqp
	}

	// The stats cache is built last, since it reads from the services below.
	var statsService *stats.Service

	publisher := events.Multi{bus, events.Func(func(ctx context.Context, e events.Event) error {
		return statsService.Publish(ctx, e)
	})}

	var (
		ledgerRepo   = ledgerStore.New(db)
		categoryRepo = categoryStore.New(db)
		cardRepo     = billingStore.New(db)

		ledgerService   = ledger.NewService(ledgerRepo, ledger.WithPublisher(publisher))
		categoryService = category.NewService(categoryRepo, publisher)
		billingService  = billing.NewService(cardRepo, ledgerRepo, publisher)
		budgetService   = budget.NewService(budgetStore.New(db), ledgerRepo, publisher)
		goalService     = goal.NewService(goalStore.New(db), publisher)
		importService   = importer.NewService(ledgerService, categoryService)
		exportService   = export.NewService(ledgerService, categoryRepo, billingService)
	)

	statsService = stats.NewService(stats.Sources{
		Ledger:     ledgerRepo,
		Categories: categoryRepo,
		Cards:      billingService,
		Budgets:    budgetService,
		Goals:      goalService,
	}, cache.New(cfg.Cache.TTL, cfg.Cache.Cleanup))

	router := pennyHttp.New(pennyHttp.Handlers{
		Accounts:     accountHandler.NewHandler(ledgerService, statsService),
		Transactions: txHandler.NewHandler(ledgerService, statsService, exportService, importService),
		CreditCards:  cardHandler.NewHandler(billingService),
		Categories:   categoryHandler.NewHandler(categoryService),
		Budgets:      budgetHandler.NewHandler(budgetService),
		Goals:        goalHandler.NewHandler(goalService),
	}, pennyHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Limiter:        pennyHttp.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Auth:           issuer.Middleware,
		Ping:           db.PingContext,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
