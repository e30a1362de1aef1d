package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sangkips/dealflow-api/internal/bootstrap"
	"github.com/sangkips/dealflow-api/internal/config"
	"github.com/sangkips/dealflow-api/internal/presentation/http/handler"
	"github.com/sangkips/dealflow-api/internal/presentation/http/routes"
	"github.com/sangkips/dealflow-api/pkg/logger"
	"github.com/sangkips/dealflow-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open entity store", zap.Error(err))
	}
	defer closeStore()

	rules, err := bootstrap.LoadRules(cfg.Automation.RulesFile, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load automation rules", zap.Error(err))
	}

	if err := store.Idempotency.DeleteExpired(ctx, time.Now()); err != nil {
		zapLogger.Warn("Failed to purge expired idempotency keys", zap.Error(err))
	}

	services := bootstrap.NewServices(store, cfg.Automation, rules, zapLogger)
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	handlers := &routes.Handlers{
		Deal:    handler.NewDealHandler(services.Automation, services.Conversion, services.Activities),
		Quote:   handler.NewQuoteHandler(services.Quotes, services.Conversion),
		Order:   handler.NewOrderHandler(services.Orders, services.Conversion),
		Invoice: handler.NewInvoiceHandler(services.Invoices),
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: store.Idempotency,
		RateLimiter:     rateLimiter,
		Log:             zapLogger,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
