package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"eximbot/internal/config"
	"eximbot/internal/infrastructure"
	httpiface "eximbot/internal/interfaces/http"
	"eximbot/internal/interfaces/telegram"
	"eximbot/internal/logger"
	"eximbot/internal/metrics"
	"eximbot/internal/repository"
	"eximbot/internal/usecases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading configuration: " + err.Error())
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		panic("Error initializing logger: " + err.Error())
	}
	defer logger.Log.Sync()

	// Connect to PostgreSQL (bootstraps the schema; failure aborts startup)
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pgClient.Close()

	m := metrics.Registry("eximbot")

	// Initialize Repositories
	importerRepo := repository.NewImporterRepository(pgClient.Pool)
	creditRepo := repository.NewCreditRepository(pgClient.Pool)
	savedRepo := repository.NewSavedContactRepository(pgClient.Pool)
	orderRepo := repository.NewOrderRepository(pgClient.Pool)
	statsRepo := repository.NewStatsRepository(pgClient.Pool)
	adminRepo := repository.NewAdminUserRepository(pgClient.Pool)

	// Sync catalog from the bulk-load directory
	if cfg.DataDir != "" {
		n, err := importerRepo.LoadDir(context.Background(), cfg.DataDir)
		if err != nil {
			logger.Log.Warn("catalog bulk load failed", zap.Error(err))
		} else {
			logger.Log.Info("catalog loaded", zap.Int("importers", n))
		}
	}

	// Initialize Usecases
	searchService := usecases.NewSearchService(importerRepo, m)
	unlockEngine := usecases.NewUnlockEngine(pgClient.Pool, importerRepo, creditRepo, savedRepo, m)
	orderWorkflow := usecases.NewOrderWorkflow(pgClient.Pool, orderRepo, creditRepo, cfg.AdminIDs, m)
	adminAuth := usecases.NewAdminAuth(adminRepo, cfg.JWTSecret)

	// Ensure a dashboard account linked to an allowlisted Telegram id
	var adminTelegramID int64
	for id := range cfg.AdminIDs {
		adminTelegramID = id
		break
	}
	if err := adminAuth.EnsureAdmin(context.Background(), "root", "root", adminTelegramID); err != nil {
		logger.Log.Warn("failed to ensure admin user", zap.Error(err))
	}

	// Setup HTTP server (admin panel, health, metrics)
	authMiddleware := httpiface.NewMiddleware(cfg.JWTSecret)
	r := gin.Default()
	httpiface.SetupRoutes(r, adminAuth, orderWorkflow, pgClient.Pool, authMiddleware)
	go func() {
		if err := r.Run(cfg.HTTPAddr); err != nil {
			logger.Log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	if cfg.TelegramToken == "" {
		logger.Log.Warn("telegram disabled (token missing); running admin API only")
		select {}
	}

	// Telegram polling
	sessionManager := infrastructure.NewSessionManager()
	limiter := infrastructure.NewUserRateLimiter(rate.Limit(1), 5)

	bot, err := telegram.NewBot(cfg.TelegramToken, telegram.BotDeps{
		Search:          searchService,
		Unlock:          unlockEngine,
		Workflow:        orderWorkflow,
		Credits:         creditRepo,
		Saved:           savedRepo,
		Importers:       importerRepo,
		Stats:           statsRepo,
		Sessions:        sessionManager,
		Limiter:         limiter,
		Metrics:         m,
		StartingCredits: cfg.StartingCredits,
	})
	if err != nil {
		logger.Log.Fatal("failed to connect to telegram", zap.Error(err))
	}

	bot.Run(context.Background())
}
