package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/NujabesCode/itsmycolor-authgate/internal/background"
	"github.com/NujabesCode/itsmycolor-authgate/internal/config"
	"github.com/NujabesCode/itsmycolor-authgate/internal/database"
	"github.com/NujabesCode/itsmycolor-authgate/internal/handlers"
	"github.com/NujabesCode/itsmycolor-authgate/internal/iplock"
	"github.com/NujabesCode/itsmycolor-authgate/internal/lockout"
	"github.com/NujabesCode/itsmycolor-authgate/internal/middleware"
	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
	"github.com/NujabesCode/itsmycolor-authgate/internal/repositories"
	"github.com/NujabesCode/itsmycolor-authgate/internal/routes"
	"github.com/NujabesCode/itsmycolor-authgate/internal/services"
	pkgauth "github.com/NujabesCode/itsmycolor-authgate/pkg/auth"
	pkghttp "github.com/NujabesCode/itsmycolor-authgate/pkg/http"
	pkglogger "github.com/NujabesCode/itsmycolor-authgate/pkg/logger"
)

const (
	loginRateLimit  = 30
	loginRateWindow = 1 * time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	attemptRepo := repositories.NewLoginAttemptRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Lock policies and trackers
	lockoutPolicy := lockout.Policy{
		MaxFailures:  cfg.Security.AccountLockThreshold,
		LockDuration: cfg.Security.AccountLockDuration,
	}
	ipTracker := iplock.NewTracker(iplock.Policy{
		MaxFailures:   cfg.Security.IPLockThreshold,
		LockDuration:  cfg.Security.IPLockDuration,
		FailureWindow: cfg.Security.IPFailureWindow,
	})

	auditLogger := pkglogger.NewAuditLogger(logger)
	auditService := services.NewAuditService(auditRepo, logger, auditLogger)

	var emailService services.EmailService = services.NoopEmailService{}
	if cfg.Email.Enabled {
		sesService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		emailService = sesService
	}

	// Services
	authService := services.NewAuthService(accountRepo, attemptRepo, ipTracker, lockoutPolicy, logger, auditLogger)
	brandService := services.NewBrandService(brandRepo, accountRepo, emailService, auditService, logger)
	brandAccessService := services.NewBrandAccessService(brandRepo, logger)
	adminService := services.NewAdminService(accountRepo, attemptRepo, ipTracker, auditRepo, auditService, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	sellerHandler := handlers.NewSellerHandler(brandService, brandAccessService)
	adminHandler := handlers.NewAdminHandler(adminService, brandService)

	// Cleanup task for the attempt ledger, audit retention and the address
	// lock table.
	cleanupManager := background.NewCleanupManager(attemptRepo, auditRepo, ipTracker, logger, cfg.Security.CleanupInterval)

	// Bootstrap first admin account if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminAccount(bootCtx, accountRepo, logger); err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
	}
	bootCancel()

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.SecureLogger(logger, ipConfig))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Config{
		AdminAPIToken:   cfg.Security.AdminAPIToken,
		LoginRateLimit:  loginRateLimit,
		LoginRateWindow: loginRateWindow,
		IPConfig:        ipConfig,
	}, authHandler, sellerHandler, adminHandler, accountRepo, db)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminAccount creates the first admin account if ADMIN_EMAIL and
// ADMIN_PASSWORD are set.
func ensureAdminAccount(ctx context.Context, accountRepo *repositories.AccountRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin account creation")
		return nil
	}

	_, err := accountRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin account already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if err := pkgauth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD rejected: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Account{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if _, err := accountRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("admin account created successfully")
	return nil
}
