package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"teamregistry/config"
	_ "teamregistry/docs"
	"teamregistry/internal/adapters/auth"
	"teamregistry/internal/adapters/email"
	"teamregistry/internal/adapters/payments"
	delivery "teamregistry/internal/delivery/http"
	"teamregistry/internal/delivery/http/controllers"
	"teamregistry/internal/delivery/http/middleware"
	"teamregistry/internal/jobs"
	"teamregistry/internal/repository/postgres"
	"teamregistry/internal/services"
)

// @title Team Registry API
// @version 1.0
// @description Event team registrations: signup with email verification, team invitations, organizer review, check-in, and event statistics.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required in production")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	invitationRepo := postgres.NewInvitationTokenRepository(db)
	verificationRepo := postgres.NewVerificationCodeRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
		SendGridAPIKey: cfg.SendGridAPIKey,
	})
	if err != nil {
		logger.Error("failed to initialize mailer", "error", err)
		os.Exit(1)
	}
	hasher := auth.NewBcryptHasher(12)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	paymentVerifier := payments.NewHTTPVerifier(cfg.PaymentVerifyURL, cfg.PaymentVerifyTimeout)

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	verificationService := services.NewVerificationService(verificationRepo, emailService, cfg.VerificationCodeTTL)
	userService := services.NewUserService(userRepo, roleRepo, verificationService, hasher, tokenIssuer, cfg.TokenExpiry, emailService, logger)
	registrationService := services.NewRegistrationService(eventRepo, registrationRepo, invitationRepo, paymentVerifier, cfg.MaxTeamSize, 10*time.Second)
	invitationService := services.NewInvitationService(registrationRepo, invitationRepo, eventRepo, emailService, logger, cfg.InviteLinkBase, cfg.InviteTokenTTL, cfg.MaxTeamSize)
	statsService := services.NewStatsService(eventRepo, registrationRepo)

	// Controllers
	authController := controllers.NewAuthController(logger, userService)
	registrationController := controllers.NewRegistrationController(logger, registrationService, userService)
	invitationController := controllers.NewInvitationController(logger, invitationService, userService)
	statsController := controllers.NewStatsController(logger, statsService)

	mux := delivery.NewRouter(authController, registrationController, invitationController, statsController, tokenVerifier)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	purge := jobs.NewPurgeScheduler(logger, verificationRepo, invitationRepo)
	purge.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	purge.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
