package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nepalpay/esewa-service/internal/adapters/esewa"
	"github.com/nepalpay/esewa-service/internal/adapters/postgres"
	"github.com/nepalpay/esewa-service/internal/config"
	paymentHandler "github.com/nepalpay/esewa-service/internal/handlers/payment"
	pkghttp "github.com/nepalpay/esewa-service/pkg/http"
	"github.com/nepalpay/esewa-service/pkg/logging"
	"github.com/nepalpay/esewa-service/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting eSewa service",
		zap.String("version", "0.1.0"),
		zap.String("environment", cfg.Esewa.Environment),
	)

	ctx := context.Background()

	// Initialize database connection pool
	dbConfig := postgres.DefaultConfig(cfg.Database.DatabaseURL())
	dbConfig.MaxConns = cfg.Database.MaxConns
	dbConfig.MinConns = cfg.Database.MinConns

	dbPool, err := postgres.Connect(ctx, dbConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	sessionRepo := postgres.NewSessionRepository(dbPool)

	// Initialize secret manager backend
	secretManager, err := initSecretManager(ctx, cfg.Secrets, logger)
	if err != nil {
		logger.Fatal("Failed to initialize secret manager", zap.Error(err))
	}

	// Initialize gateway adapters
	portLogger := logging.NewZapLogger(logger)
	esewaTimeout := time.Duration(cfg.Esewa.Timeout) * time.Second
	httpClient := pkghttp.NewHTTPClient(pkghttp.EsewaClientConfig(), esewaTimeout)

	statusConfig := esewa.DefaultStatusClientConfig()
	statusConfig.Timeout = esewaTimeout
	statusClient := esewa.NewStatusClient(statusConfig, httpClient, portLogger)

	formAdapter := esewa.NewFormAdapter(esewa.DefaultFormConfig(cfg.Esewa.Environment), portLogger)

	// Wire HTTP handlers
	handler := paymentHandler.NewHandler(
		sessionRepo,
		statusClient,
		secretManager,
		formAdapter,
		cfg.Esewa,
		logger,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      observability.HTTPMetricsMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics and health server
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker, logger)

	go func() {
		logger.Info("HTTP server listening",
			zap.String("address", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

// initLogger initializes the logger
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	if cfg.Development {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := zapCfg.Build()
	return logger
}
