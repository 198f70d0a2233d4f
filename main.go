package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/username/stonksoverwatch/backend/src/brokers"
	"github.com/username/stonksoverwatch/backend/src/brokers/bitvavo"
	"github.com/username/stonksoverwatch/backend/src/brokers/degiro"
	"github.com/username/stonksoverwatch/backend/src/brokers/ibkr"
	"github.com/username/stonksoverwatch/backend/src/config"
	"github.com/username/stonksoverwatch/backend/src/currency"
	"github.com/username/stonksoverwatch/backend/src/database"
	"github.com/username/stonksoverwatch/backend/src/handlers"
	"github.com/username/stonksoverwatch/backend/src/logger"
	"github.com/username/stonksoverwatch/backend/src/scheduler"
	"github.com/username/stonksoverwatch/backend/src/security"
	"github.com/username/stonksoverwatch/backend/src/services"
	"github.com/username/stonksoverwatch/backend/src/session"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

type refreshJob struct {
	refresh *services.RefreshService
}

func (j refreshJob) Name() string { return "broker-refresh" }

func (j refreshJob) Run() error {
	j.refresh.RefreshAll(context.Background())
	return nil
}

// sessionSecret returns the configured session secret. When none is set,
// an ephemeral one is generated so a zero-config start still works;
// sessions then do not survive restarts.
func sessionSecret(configured string) (string, error) {
	if configured == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating session secret: %w", err)
		}
		logger.L.Warn("SESSION_SECRET not set, generated an ephemeral secret; sessions will not survive restarts")
		return hex.EncodeToString(buf), nil
	}
	if len(configured) < 32 {
		return "", errors.New("SESSION_SECRET must be at least 32 characters")
	}
	return configured, nil
}

// enableDemoBrokers switches every broker on with credentials that pass
// the minimal-credential checks, so the demo dashboard works without any
// configuration step.
func enableDemoBrokers(store *brokers.ConfigStore) {
	demoCredentials := map[string]brokers.Credentials{
		brokers.BrokerDeGiro:  {Username: "demo-user", Password: "demo-password"},
		brokers.BrokerBitvavo: {APIKey: strings.Repeat("d", 24), APISecret: strings.Repeat("d", 24)},
		brokers.BrokerIBKR:    {AccountID: "DEMO1234"},
	}
	configs, err := store.LoadAll()
	if err != nil {
		logger.L.Error("Could not load broker configuration for demo", "error", err)
		return
	}
	for broker, creds := range demoCredentials {
		cfg := configs[broker]
		if cfg.Enabled {
			continue
		}
		cfg.Enabled = true
		cfg.Credentials = creds
		if err := store.Save(cfg); err != nil {
			logger.L.Error("Could not enable demo broker", "broker", broker, "error", err)
		}
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Stonks Overwatch backend starting...")

	secret, err := sessionSecret(config.Cfg.SessionSecret)
	if err != nil {
		logger.L.Error("Session secret configuration invalid", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	if err := database.InitDB(config.Cfg.DatabasePath); err != nil {
		logger.L.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(config.Cfg.DatabasePath, config.Cfg.MigrationsDir); err != nil {
		logger.L.Error("Failed to apply database migrations", "error", err)
		os.Exit(1)
	}

	key, err := security.LoadOrCreateKey(config.Cfg.CredentialKeyPath)
	if err != nil {
		logger.L.Error("Failed to load credential key", "error", err)
		os.Exit(1)
	}
	cipher, err := security.NewCipher(key)
	if err != nil {
		logger.L.Error("Failed to initialize cipher", "error", err)
		os.Exit(1)
	}
	configStore := brokers.NewConfigStore(database.DB, cipher, config.Cfg.BrokersConfigPath)

	degiroRepo := degiro.NewRepository(database.DB)
	bitvavoRepo := bitvavo.NewRepository(database.DB)
	ibkrRepo := ibkr.NewRepository(database.DB)

	converter := currency.NewConverter(degiroRepo, currency.NewECBClient())

	baseCurrency := config.Cfg.BaseCurrency
	degiroService := degiro.NewService(degiroRepo, converter, configStore, baseCurrency)
	bitvavoService := bitvavo.NewService(bitvavoRepo, converter, configStore, baseCurrency)
	ibkrService := ibkr.NewService(ibkrRepo, converter, configStore, baseCurrency)

	registry := brokers.NewRegistry()
	registry.Register(brokers.BrokerDeGiro, degiroService.Capabilities())
	registry.Register(brokers.BrokerBitvavo, bitvavoService.Capabilities())
	registry.Register(brokers.BrokerIBKR, ibkrService.Capabilities())

	marketData := services.NewMarketDataService()

	transactionsAgg := services.NewTransactionsAggregator(registry, configStore)
	feesAgg := services.NewFeesAggregator(registry, configStore)
	depositsAgg := services.NewDepositsAggregator(registry, configStore)
	dividendsAgg := services.NewDividendsAggregator(registry, configStore)
	accountAgg := services.NewAccountAggregator(registry, configStore)
	portfolioAgg := services.NewPortfolioAggregator(registry, configStore, baseCurrency)
	diversification := services.NewDiversificationService(portfolioAgg, marketData, baseCurrency)

	var refreshService *services.RefreshService
	if config.Cfg.DemoMode {
		logger.L.Info("DEMO_MODE active, broker clients serve canned data")
		enableDemoBrokers(configStore)
		refreshService = services.NewRefreshService(configStore,
			degiro.NewUpdater(degiroRepo, degiro.NewDemoClient(), configStore),
			bitvavo.NewUpdater(bitvavoRepo, bitvavo.NewDemoClient(), configStore),
			ibkr.NewUpdater(ibkrRepo, ibkr.NewDemoClient(), configStore),
		)
	} else {
		// Live API clients plug in here; until one is wired the refresh
		// pass covers no brokers and the tables hold imported data only.
		refreshService = services.NewRefreshService(configStore)
	}

	sched := scheduler.New()
	job := refreshJob{refresh: refreshService}
	if config.Cfg.DemoMode {
		// Seed immediately so the dashboard has data on first load.
		if err := sched.RunNow(job); err != nil {
			logger.L.Error("Initial demo refresh failed", "error", err)
		}
	}

	sessionManager := session.NewManager(secret, config.Cfg.SessionExpiry,
		strings.HasPrefix(config.Cfg.FrontendBaseURL, "https://"))
	brokerAuth := handlers.NewBrokerAuth(registry, configStore, config.Cfg.FrontendBaseURL+"/login")

	dashboardHandler := handlers.NewDashboardHandler(portfolioAgg, transactionsAgg, dividendsAgg)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioAgg, diversification)
	txHandler := handlers.NewTransactionHandler(transactionsAgg)
	feeHandler := handlers.NewFeeHandler(feesAgg)
	depositHandler := handlers.NewDepositHandler(depositsAgg)
	dividendHandler := handlers.NewDividendHandler(dividendsAgg)
	accountHandler := handlers.NewAccountHandler(accountAgg)
	configHandler := handlers.NewConfigurationHandler(configStore, registry, refreshService)

	r := chi.NewRouter()

	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(handlers.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.Cfg.FrontendBaseURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Cookie"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(handlers.RateLimitMiddleware(limiter))
	r.Use(sessionManager.Middleware)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"message":"Stonks Overwatch backend is running"}`)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/configuration", configHandler.HandleGetConfiguration)
		r.Post("/configuration", configHandler.HandlePostConfiguration)

		r.Group(func(r chi.Router) {
			r.Use(brokerAuth.Middleware)

			r.Get("/dashboard", dashboardHandler.HandleGetDashboard)
			r.Get("/portfolio", portfolioHandler.HandleGetPortfolio)
			r.Get("/diversification", portfolioHandler.HandleGetDiversification)
			r.Get("/transactions", txHandler.HandleGetTransactions)
			r.Get("/fees", feeHandler.HandleGetFees)
			r.Get("/deposits", depositHandler.HandleGetDeposits)
			r.Get("/dividends", dividendHandler.HandleGetDividends)
			r.Get("/account-overview", accountHandler.HandleGetAccountOverview)
		})
	})

	schedule := fmt.Sprintf("@every %dm", config.Cfg.UpdateIntervalMinutes)
	if err := sched.AddJob(schedule, job); err != nil {
		logger.L.Error("Failed to register refresh job", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
