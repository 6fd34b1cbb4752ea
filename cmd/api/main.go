package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"quickgig/internal/app"
	"quickgig/internal/config"
	"quickgig/internal/database"
	apphttp "quickgig/internal/http"
	"quickgig/internal/http/handlers"
	"quickgig/internal/http/metrics"
	httpmw "quickgig/internal/http/middleware"
	"quickgig/internal/http/response"
	"quickgig/internal/location"
	"quickgig/internal/observability"
	"quickgig/internal/repository/postgres"
	"quickgig/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	jobRepo := postgres.NewJobRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	walletRepo := postgres.NewWalletRepository(db)

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	locks := app.NewJobLocks()
	locator := location.NewHaversineService()
	settlement := app.NewSettlementCoordinator(applicationRepo, walletRepo, logger, collector)
	jobService := app.NewJobService(jobRepo, applicationRepo, settlement, locks, logger, collector)
	applicationService := app.NewApplicationService(applicationRepo, jobRepo, jobService, locator, locks, logger, collector)
	walletService := app.NewWalletService(walletRepo, logger, collector)

	sweeper := app.NewCompletionSweeper(jobRepo, jobService, logger, cfg.CompletionInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("completion sweeper failed to start: %v", err)
	}

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	jobHandler := handlers.NewJobHandler(jobService, limiter, cfg.ListDefaultLimit, cfg.ListMaxLimit)
	applicationHandler := handlers.NewApplicationHandler(applicationService, limiter)
	walletHandler := handlers.NewWalletHandler(walletService, cfg.PaymentInternalKey)
	authMiddleware := httpmw.NewAuthMiddleware(jwtProvider)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		JobHandler:         jobHandler,
		ApplicationHandler: applicationHandler,
		WalletHandler:      walletHandler,
		AuthMiddleware:     authMiddleware,
		Metrics:            collector,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("API started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sweeper.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
