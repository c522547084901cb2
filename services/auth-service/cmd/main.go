package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/notifier"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/strategy"
	"github.com/vasapolrittideah/siwic-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/siwic-api/shared/auth"
	"github.com/vasapolrittideah/siwic-api/shared/database"
	"github.com/vasapolrittideah/siwic-api/shared/discovery"
	"github.com/vasapolrittideah/siwic-api/shared/logger"
	"github.com/vasapolrittideah/siwic-api/shared/mailer"
	"github.com/vasapolrittideah/siwic-api/shared/middleware"
	"github.com/vasapolrittideah/siwic-api/shared/provider"
	"github.com/vasapolrittideah/siwic-api/shared/utilities"
	"github.com/vasapolrittideah/siwic-api/shared/validation"
	"github.com/vasapolrittideah/siwic-api/shared/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	bootLogger := logger.New(logger.Options{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})
	cfg := config.NewAuthServiceConfig(bootLogger)
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: cfg.Discovery.ServiceName})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.Mongo.DBName)

	accountRepo := repository.NewAccountMongoRepository(ctx, log, db)
	facebookRepo := repository.NewFacebookProfileMongoRepository(ctx, log, db)
	googleRepo := repository.NewGoogleProfileMongoRepository(ctx, log, db)
	twitterRepo := repository.NewTwitterProfileMongoRepository(ctx, log, db)
	stateRepo := repository.NewOAuthStateMongoRepository(ctx, log, db)

	strategies := newStrategies(cfg, log, facebookRepo, googleRepo, twitterRepo)

	pool := worker.NewPool(log, cfg.Worker.Count, cfg.Worker.QueueSize)
	pool.Start()

	notifierOpts := notifier.Options{PostbackURL: cfg.PostbackURL}
	if cfg.Mail.Enabled() {
		m, err := mailer.New(cfg.Mail)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create mailer")
		}
		notifierOpts.Mail = m
	} else {
		log.Info().Msg("SMTP_HOST not set, welcome e-mails disabled")
	}
	n := notifier.New(log, pool, notifierOpts)

	var enricher usecase.TwitterEnricher
	if cfg.Twitter.BearerToken != "" {
		enricher = provider.NewTwitterAPIClient("", cfg.Twitter.BearerToken, nil)
	}

	validator, err := validation.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Session.Issuer, cfg.Session.Issuer)
	sessionUsecase := usecase.NewSessionUsecase(accountRepo, facebookRepo, googleRepo, twitterRepo, jwtAuth, cfg.Session)
	callbackUsecase := usecase.NewCallbackUsecase(log, twitterRepo, enricher, n)
	accountUsecase := usecase.NewAccountUsecase(accountRepo, n)

	cookies := handler.NewSessionCookies(sessionUsecase, cfg.Session)
	router := handler.NewRouter(
		handler.NewAuthHandler(strategies, stateRepo, callbackUsecase, sessionUsecase, cookies, cfg.OAuthStateTTL),
		handler.NewUserHandler(accountUsecase, validator, cookies),
		handler.RouterOptions{
			Logger:        log,
			AllowedOrigin: cfg.AllowedOrigin,
			Session:       middleware.NewSessionMiddleware(jwtAuth, cfg.Session.Secret, cfg.Session.CookieName),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", server.Addr).Msg("auth service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var healthServer *utilities.HealthServer
	if cfg.Discovery.GRPCHealthPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Discovery.GRPCHealthPort))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to listen for gRPC health checks")
		}
		healthServer = utilities.NewHealthServer(log)
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				log.Error().Err(err).Msg("gRPC health server stopped")
			}
		}()
	}

	registration := discovery.Registration{
		Name:       cfg.Discovery.ServiceName,
		Host:       cfg.Discovery.ServiceHost,
		Port:       cfg.Port,
		HealthPath: "/healthz",
	}
	var registry *discovery.ConsulRegistry
	if cfg.Discovery.ConsulAddress != "" {
		registry, err = discovery.NewConsulRegistry(cfg.Discovery.ConsulAddress, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create consul registry")
		}
		if err := registry.Register(registration); err != nil {
			log.Error().Err(err).Msg("service registration failed")
		}
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	if registry != nil {
		registry.Deregister(registration)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down HTTP server")
	}
	if healthServer != nil {
		healthServer.Shutdown()
	}
	if err := pool.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("background tasks dropped on shutdown")
	}
}

// newStrategies builds a strategy for every provider whose credentials are set.
func newStrategies(
	cfg *config.AuthServiceConfig,
	log *zerolog.Logger,
	facebookRepo repository.FacebookProfileRepository,
	googleRepo repository.GoogleProfileRepository,
	twitterRepo repository.TwitterProfileRepository,
) strategy.Registry {
	var strategies []strategy.Strategy

	if cfg.Facebook.Enabled() {
		strategies = append(strategies, strategy.NewFacebookStrategy(provider.NewFacebookProvider(provider.FacebookConfig{
			ClientID:     cfg.Facebook.AppID,
			ClientSecret: cfg.Facebook.AppSecret,
			CallbackURL:  cfg.Facebook.CallbackURL,
		}), facebookRepo))
	}
	if cfg.Google.Enabled() {
		strategies = append(strategies, strategy.NewGoogleStrategy(provider.NewGoogleOAuthProvider(provider.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			CallbackURL:  cfg.Google.CallbackURL,
		}), googleRepo))
	}
	if cfg.Twitter.Enabled() {
		strategies = append(strategies, strategy.NewTwitterStrategy(provider.NewTwitterProvider(provider.TwitterConfig{
			ConsumerKey:    cfg.Twitter.APIKey,
			ConsumerSecret: cfg.Twitter.APIKeySecret,
			CallbackURL:    cfg.Twitter.CallbackURL,
		}), twitterRepo))
	}

	registry := strategy.NewRegistry(strategies...)
	for name := range registry {
		log.Info().Str("provider", name).Msg("login provider enabled")
	}

	return registry
}
