package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groomly/internal/config"
	"groomly/internal/domain/notification"
	"groomly/internal/infra/email"
	"groomly/internal/infra/ratelimit"
	"groomly/internal/infra/sms"
	"groomly/internal/infra/store"
	"groomly/internal/infra/template"
	"groomly/internal/router"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "port", cfg.Server.Port, "mode", cfg.Server.Mode)

	// ==========================================
	// Dependency Injection (Manual Wiring)
	// ==========================================

	// Supabase client + entity stores
	supaClient, err := store.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		slog.Error("failed to initialize supabase client", "error", err)
		os.Exit(1)
	}
	logStore := store.NewLogStore(supaClient)
	prefStore := store.NewPreferenceStore(supaClient)
	templateStore := store.NewTemplateStore(supaClient)
	settingsStore := store.NewSettingsStore(supaClient)
	slog.Info("supabase stores initialized")

	// Channel providers
	emailProvider, err := buildEmailProvider(cfg)
	if err != nil {
		slog.Error("failed to initialize email provider", "error", err)
		os.Exit(1)
	}
	smsProvider, err := buildSMSProvider(cfg)
	if err != nil {
		slog.Error("failed to initialize sms provider", "error", err)
		os.Exit(1)
	}
	slog.Info("channel providers initialized",
		"email", cfg.Email.Provider,
		"sms", cfg.SMS.Provider,
	)

	// Template engine
	engine := template.NewEngine()

	// Recipient rate limiter (marketing sends)
	recipientLimiter := ratelimit.NewRedisRecipientLimiter(
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.RecipientRateLimit.MaxPerHour,
	)
	defer recipientLimiter.Close()
	slog.Info("recipient rate limiter initialized", "max_per_hour", cfg.RecipientRateLimit.MaxPerHour)

	// Preference service
	prefService := notification.NewPreferenceService(prefStore)

	// Notification service
	notificationService := notification.NewService(
		prefService,
		settingsStore,
		templateStore,
		logStore,
		engine,
		notification.ServiceOptions{
			SendTimeout: time.Duration(cfg.Notification.SendTimeoutSec) * time.Second,
			RateLimiter: recipientLimiter,
		},
		emailProvider,
		smsProvider,
	)

	// Unsubscribe token codec
	codec := notification.NewUnsubscribeCodec(cfg.Unsubscribe.Secret, cfg.Unsubscribe.BaseURL)

	// Handler
	notificationHandler := notification.NewHandler(notificationService, prefService, codec)

	// Router
	r := router.New(cfg, notificationHandler)

	// ==========================================
	// Stale Entry Sweeper
	// ==========================================

	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()

	sweeper := notification.NewSweeper(logStore, notification.SweeperConfig{
		Interval:       time.Duration(cfg.Sweeper.IntervalSec) * time.Second,
		StaleThreshold: time.Duration(cfg.Sweeper.StaleThresholdSec) * time.Second,
		BatchSize:      cfg.Sweeper.BatchSize,
	})

	go sweeper.Run(sweeperCtx)

	// ==========================================
	// HTTP Server with Graceful Shutdown
	// ==========================================

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	sweeperCancel() // Stop the sweeper first

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// buildEmailProvider selects the email provider from configuration.
func buildEmailProvider(cfg *config.Config) (notification.Provider, error) {
	switch cfg.Email.Provider {
	case "smtp":
		return email.NewSMTPProvider(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password,
			cfg.Email.FromAddress,
			cfg.Email.FromName,
		), nil
	case "resend", "":
		return email.NewResendProvider(
			cfg.Email.APIKey,
			cfg.Email.FromAddress,
			cfg.Email.FromName,
		), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}

// buildSMSProvider selects the SMS provider from configuration.
func buildSMSProvider(cfg *config.Config) (notification.Provider, error) {
	switch cfg.SMS.Provider {
	case "sns":
		return sms.NewSNSProvider(context.Background(), cfg.SMS.AWSRegion)
	case "twilio", "":
		return sms.NewTwilioProvider(
			cfg.SMS.AccountSID,
			cfg.SMS.AuthToken,
			cfg.SMS.FromNumber,
		), nil
	default:
		return nil, fmt.Errorf("unknown sms provider: %s", cfg.SMS.Provider)
	}
}
