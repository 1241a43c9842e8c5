// Command server runs the congregation site RSVP API.
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

	"congregationsite/config"
	_ "congregationsite/docs"
	"congregationsite/internal/adapters/auth"
	"congregationsite/internal/adapters/email"
	httpdelivery "congregationsite/internal/delivery/http"
	"congregationsite/internal/delivery/http/controllers"
	"congregationsite/internal/domain"
	"congregationsite/internal/repository/postgres"
	"congregationsite/internal/services"
)

// @title Congregation Site API
// @version 1.0
// @description Event pages, RSVP admission with waitlist, and event administration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database")

	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	verifier, issuer := authProvider(cfg.Auth, logger)
	authService := services.NewAuthService(
		services.AdminCredentials{Email: cfg.Auth.AdminEmail, PasswordHash: cfg.Auth.AdminPasswordHash},
		auth.NewBcryptHasher(0),
		issuer,
		cfg.Auth.JWTExpiry,
	)
	eventService := services.NewEventService(eventRepo, rsvpRepo, cfg.RequestTimeout)
	rsvpService := services.NewRSVPService(eventRepo, rsvpRepo, emailService, logger, services.RSVPOptions{
		MaxGuests:      cfg.MaxGuests,
		ContextTimeout: cfg.RequestTimeout,
		NotifyTimeout:  cfg.NotifyTimeout,
	})

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Events: controllers.NewEventController(logger, eventService),
		RSVPs:  controllers.NewRSVPController(logger, rsvpService),
		Auth:   controllers.NewAuthController(logger, authService),
	}, verifier, db, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.Handler(mux, cfg.CORSAllowedOrigins, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "auth_provider", cfg.Auth.Provider, "email_provider", cfg.Email.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// authProvider picks the token verifier and issuer for AUTH_PROVIDER. "none" closes admin routes.
func authProvider(cfg config.AuthConfig, logger *slog.Logger) (domain.TokenVerifier, domain.TokenIssuer) {
	switch cfg.Provider {
	case "jwt":
		j := auth.NewJWT(cfg.JWTSecret)
		return j, j
	default:
		logger.Warn("no identity provider configured; admin routes will reject every request", "auth_provider", cfg.Provider)
		return auth.NewInertVerifier(), nil
	}
}
