package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/aaravmahajanofficial/storefront/docs"
	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/aaravmahajanofficial/storefront/internal/tracing"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("Tracer shutdown failed", slog.Any("error", err))
		}
	}()

	repos, err := repository.New(cfg)
	if err != nil {
		return fmt.Errorf("error accessing the database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed")
		}
	}()

	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("error accessing the redis instance: %w", err)
	}
	defer redisClient.Close()

	store, err := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.PublicPath, cfg.Uploads.MaxFileSize)
	if err != nil {
		return err
	}

	var cards stripeClient.Client
	if cfg.Stripe.APIKey != "" {
		cards = stripeClient.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)
	} else {
		slog.Warn("Stripe API key not set, card payments disabled")
	}

	var emailService sendgrid.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailService = sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		slog.Warn("SendGrid API key not set, notifications will be recorded as failed")
	}

	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	rateLimit := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)
	tokens := repository.NewTokenRepo(redisClient)

	notificationService := service.NewNotificationService(repos.Notification, repos.Users, emailService)
	voucherService := service.NewVoucherService(repos.Vouchers)
	userService := service.NewUserService(repos.Users, rateLimit, tokens, cfg.Security)
	productService := service.NewProductService(repos.Products, productCache, cfg.Cache.DefaultTTL)
	shippingService := service.NewShippingService(repos.Shipping, productCache, cfg.Cache.DefaultTTL)
	addressService := service.NewAddressService(repos.Addresses)
	cartService := service.NewCartService(repos.Carts, repos.Products)
	orderService := service.NewOrderService(repos.Orders, repos.Carts, repos.Products, repos.Addresses, repos.Shipping, voucherService, notificationService)
	paymentService := service.NewPaymentService(repos.Payments, repos.Orders, store, cards, notificationService, cfg.Stripe.Currency)
	reviewService := service.NewReviewService(repos.Reviews, repos.Orders, store)

	maxUpload := cfg.Uploads.MaxFileSize

	api := &apiHandlers{
		users:         handlers.NewUserHandler(userService),
		products:      handlers.NewProductHandler(productService),
		shipping:      handlers.NewShippingHandler(shippingService),
		addresses:     handlers.NewAddressHandler(addressService),
		vouchers:      handlers.NewVoucherHandler(voucherService),
		carts:         handlers.NewCartHandler(cartService),
		orders:        handlers.NewOrderHandler(orderService),
		payments:      handlers.NewPaymentHandler(paymentService, maxUpload),
		reviews:       handlers.NewReviewHandler(reviewService, maxUpload),
		notifications: handlers.NewNotificationHandler(notificationService),
	}

	healthChecks, err := health.NewHealthHandler(cfg, &health.Endpoints{StripeClient: cards, Version: version})
	if err != nil {
		return err
	}

	publicPath := strings.TrimSuffix(cfg.Uploads.PublicPath, "/")
	ops := &opsHandlers{
		health:      healthChecks.Handler(),
		uploads:     http.StripPrefix(publicPath, http.FileServer(http.Dir(cfg.Uploads.Dir))),
		uploadsPath: publicPath,
	}

	router := newRouter(api, ops, middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey)))
	handler := chain(router, cfg.HTTPServer.AllowedOrigins, func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "storefront")
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	serverErr := make(chan error, 1)

	go func() {
		slog.Info("Server is starting", slog.String("address", server.Addr), slog.String("env", cfg.Env), slog.String("version", version))

		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		slog.Warn("Shutdown signal received, stopping the server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("Server shut down gracefully")

	return nil
}
