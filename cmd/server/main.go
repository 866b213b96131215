package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gulfemperor/storefront/internal"
	"github.com/gulfemperor/storefront/internal/billing"
	"github.com/gulfemperor/storefront/internal/bootstrap"
	"github.com/gulfemperor/storefront/internal/email"
	"github.com/gulfemperor/storefront/internal/handler/dashboard"
	"github.com/gulfemperor/storefront/internal/handler/storefront"
	"github.com/gulfemperor/storefront/internal/handler/webhook"
	"github.com/gulfemperor/storefront/internal/middleware"
	"github.com/gulfemperor/storefront/internal/postgres"
	"github.com/gulfemperor/storefront/internal/router"
	"github.com/gulfemperor/storefront/internal/routes"
	"github.com/gulfemperor/storefront/internal/service"
	"github.com/gulfemperor/storefront/internal/telemetry"
	"github.com/gulfemperor/storefront/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("postgres", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application queries
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	// Seed the initial manager account if configured
	managerCfg := &bootstrap.ManagerConfig{
		Email: cfg.Manager.Email,
		Name:  cfg.Manager.Name,
	}
	if err := bootstrap.EnsureManager(ctx, store, managerCfg, logger); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	// Initialize Stripe billing provider. The provider is injected into the
	// checkout service and webhook handler rather than configured globally.
	logger.Info("Initializing Stripe billing provider...")
	stripeConfig := billing.StripeConfig{
		APIKey:         cfg.Stripe.SecretKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		MaxRetries:     2,
		TimeoutSeconds: 30,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Initialize email delivery
	var sender email.Sender
	if cfg.Email.Enabled {
		sender = email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
		logger.Info("SMTP email sender initialized", "host", cfg.Email.Host)
	} else {
		sender = email.NewNoopSender(logger)
		logger.Info("Email delivery disabled, using noop sender")
	}
	emailService := email.NewService(sender, logger, cfg.Email.From, cfg.Email.FromName, cfg.Store.Name)

	// Initialize services
	productService := service.NewProductService(store)
	inventoryService := service.NewInventoryService(store, logger)
	cartService := service.NewCartService(store, logger)
	userService := service.NewUserService(store)
	orderService := service.NewOrderService(store, logger)
	checkoutService := service.NewCheckoutService(store, cartService, billingProvider, logger, service.CheckoutConfig{
		StoreName:        cfg.Store.Name,
		Currency:         cfg.Store.Currency,
		ShippingFlatFils: cfg.Store.ShippingFlatFils,
	})
	paymentEventService := service.NewPaymentEventService(store, emailService, logger)

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	secureCookies := cfg.Env == "prod"

	storefrontDeps := routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(productService),
		CartHandler:     storefront.NewCartHandler(cartService, secureCookies),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService, secureCookies),
		OrderHandler:    storefront.NewOrderHandler(orderService),
	}

	dashboardDeps := routes.DashboardDeps{
		StatsHandler:     dashboard.NewStatsHandler(orderService),
		OrderHandler:     dashboard.NewOrderHandler(orderService),
		InventoryHandler: dashboard.NewInventoryHandler(inventoryService),
	}

	stripeWebhookHandler := webhook.NewStripeHandler(billingProvider, paymentEventService, cfg.Stripe.WebhookSecret, logger)
	webhookDeps := routes.WebhookDeps{
		StripeHandler: stripeWebhookHandler.HandleWebhook,
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	telemetry.InitBusinessMetrics("storefront")
	metrics := middleware.NewMetrics("storefront")

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env != "prod" {
		securityConfig.ContentSecurityPolicy = ""
		securityConfig.HSTSMaxAge = 0
	}

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer rateLimiter.Stop()

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.SmallMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		rateLimiter.Middleware,
		middleware.WithRequestLogger(logger),
		middleware.WithUser(userService),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterDashboardRoutes(r, dashboardDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// ==========================================================================
	// Start server with graceful shutdown
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background maintenance: purge abandoned guest carts and expired sessions
	maintenance := worker.NewWorker(store, worker.Config{}, logger)
	go func() {
		if err := maintenance.Start(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("maintenance worker stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("Shutting down server...")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
