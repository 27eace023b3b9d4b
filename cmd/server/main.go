package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appidentity "github.com/edupay/backend/internal/application/identity"
	appledger "github.com/edupay/backend/internal/application/ledger"
	appschool "github.com/edupay/backend/internal/application/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/infrastructure/auth"
	"github.com/edupay/backend/internal/infrastructure/cache"
	"github.com/edupay/backend/internal/infrastructure/config"
	"github.com/edupay/backend/internal/infrastructure/gateway"
	"github.com/edupay/backend/internal/infrastructure/logger"
	"github.com/edupay/backend/internal/infrastructure/notify"
	"github.com/edupay/backend/internal/infrastructure/persistence"
	"github.com/edupay/backend/internal/interfaces/http/handler"
	"github.com/edupay/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting EduPay backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	gormLogger := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := db.Ping(); err != nil {
		zapLogger.Fatal("Database is not reachable", zap.Error(err))
	}
	zapLogger.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))

	// Infrastructure services
	jwtService := auth.NewJWTService(cfg.JWT)

	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			zapLogger.Error("Failed to close idempotency store", zap.Error(err))
		}
	}()

	razorpayClient := gateway.NewRazorpayClient(cfg.Gateway, zapLogger)
	signatureVerifier := gateway.NewHMACVerifier(cfg.Gateway.WebhookSecret)
	credentialNotifier := notify.NewLogNotifier(zapLogger)
	clock := shared.SystemClock{}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	feeRepo := persistence.NewGormFeeRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	announcementRepo := persistence.NewGormAnnouncementRepository(db.DB)
	unitOfWork := persistence.NewGormUnitOfWork(db.DB)

	// Application services
	authService := appidentity.NewAuthService(userRepo, studentRepo, jwtService, zapLogger)
	studentService := appschool.NewStudentService(studentRepo, userRepo, credentialNotifier, zapLogger)
	announcementService := appschool.NewAnnouncementService(announcementRepo, studentRepo, zapLogger)

	ownershipGuard := appledger.NewOwnershipGuard(feeRepo, studentRepo)
	feeService := appledger.NewFeeService(ownershipGuard, feeRepo, paymentRepo)
	cashPaymentService := appledger.NewCashPaymentService(ownershipGuard, unitOfWork, clock, zapLogger)
	paymentOrderService := appledger.NewPaymentOrderService(ownershipGuard, paymentRepo, razorpayClient, clock, zapLogger)
	callbackService := appledger.NewGatewayCallbackService(
		signatureVerifier,
		paymentRepo,
		feeRepo,
		unitOfWork,
		idempotencyStore,
		shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL},
		clock,
		zapLogger,
	)

	// HTTP handlers
	handlers := router.Handlers{
		System:       handler.NewSystemHandler(db),
		Auth:         handler.NewAuthHandler(authService),
		Student:      handler.NewStudentHandler(studentService),
		Fee:          handler.NewFeeHandler(feeService),
		Payment:      handler.NewPaymentHandler(cashPaymentService, paymentOrderService, feeService),
		Callback:     handler.NewCallbackHandler(callbackService),
		Portal:       handler.NewPortalHandler(studentService, feeService, announcementService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
	}

	engine := router.New(cfg, jwtService, handlers, zapLogger)

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			zapLogger.Fatal("Invalid trusted proxy configuration", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.App.Port),
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}

	zapLogger.Info("Server stopped")
}
