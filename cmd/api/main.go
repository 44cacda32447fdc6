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

	"meetpoll/config"
	authadapter "meetpoll/internal/adapters/auth"
	emailadapter "meetpoll/internal/adapters/email"
	"meetpoll/internal/adapters/jobs"
	"meetpoll/internal/adapters/yammer"
	delivery "meetpoll/internal/delivery/http"
	"meetpoll/internal/delivery/http/controllers"
	"meetpoll/internal/delivery/http/middleware"
	"meetpoll/internal/repository/postgres"
	"meetpoll/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	jobQueueBuffer  = 64
	shutdownTimeout = 10 * time.Second
)

// @title Meetpoll API
// @version 1.0
// @description Event scheduling with suggestions, votes, and invitations.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	cipher, err := authadapter.NewTokenCipher(cfg.AccessTokenKey)
	if err != nil {
		logger.Error("init token cipher", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	userRepo := postgres.NewUserRepository(db, cipher)
	guestRepo := postgres.NewGuestRepository(db)
	groupRepo := postgres.NewGroupRepository(db)

	// Adapters
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: emailadapter.SESConfig{
			Region:          cfg.Mailer.SESRegion,
			AccessKeyID:     cfg.Mailer.SESAccessKey,
			SecretAccessKey: cfg.Mailer.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}
	renderer := emailadapter.NewTemplateRenderer()

	endpoint := cfg.Yammer.Endpoint
	if endpoint == "" {
		endpoint = yammer.DefaultEndpoint
	}
	stagingEndpoint := cfg.Yammer.StagingEndpoint
	if stagingEndpoint == "" {
		stagingEndpoint = yammer.DefaultStagingEndpoint
	}
	network := yammer.NewClient(&http.Client{Timeout: 15 * time.Second}, userRepo, groupRepo, endpoint, stagingEndpoint)

	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	jobQueue := jobs.NewQueue(jobQueueBuffer, logger)
	defer jobQueue.Close()

	// Services
	emailSvc := services.NewEmailService(mailer, renderer)
	notifier := services.NewNotificationRouter(userRepo, network, emailSvc, cfg.BaseURL, logger)
	invitationSvc := services.NewInvitationService(eventRepo, invitationRepo, userRepo, guestRepo, groupRepo, network, notifier, logger, serviceTimeout)
	eventSvc := services.NewEventService(eventRepo, suggestionRepo, voteRepo, invitationRepo, userRepo, guestRepo, invitationSvc, notifier, jobQueue, logger, serviceTimeout)

	// Delivery
	eventController := controllers.NewEventController(logger, eventSvc)
	invitationController := controllers.NewInvitationController(logger, eventSvc, invitationSvc, userRepo, network)
	authController := controllers.NewAuthController(logger, network, userRepo, issuer)

	mux := delivery.NewRouter(eventController, invitationController, authController, verifier)

	handler := middleware.CORS(cfg.CORSOrigins, mux)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
