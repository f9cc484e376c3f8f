// @title           Cloud Drive API
// @version         1.0
// @description     Browser file storage with folders, trash, starring and sharing.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud-drive/internal/api"
	"cloud-drive/internal/auth"
	"cloud-drive/internal/catalog"
	"cloud-drive/internal/config"
	"cloud-drive/internal/events"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "cloud-drive/docs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(serve())
}

// serve returns the process exit code so deferred cleanup, including the
// logger flush, runs before the process exits.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	objects, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	identity, verifier, err := newIdentity(ctx, cfg, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	hub := websocket.NewHub(logger.Named("websocket"))
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	publishers := events.Multi{hub}
	if cfg.MQ.URL != "" {
		amqpPublisher, err := events.DialAMQP(ctx, cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.Buffer, logger.Named("amqp"))
		if err != nil {
			return fmt.Errorf("connect to message broker: %w", err)
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
		g.Go(func() error {
			amqpPublisher.Worker(gctx)
			return nil
		})
		logger.Info("publishing events to message broker", zap.String("exchange", cfg.MQ.Exchange))
	}

	server := api.NewServer(api.Deps{
		Config:   cfg,
		Store:    catalog.NewStore(dbpool),
		Storage:  objects,
		Identity: identity,
		Verifier: verifier,
		Events:   publishers,
		Hub:      hub,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newObjectStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.ObjectStore, error) {
	sc := cfg.Storage
	switch sc.Driver {
	case "s3":
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          sc.Bucket,
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
		}, logger.Named("s3"))
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		logger.Info("storing payloads in s3", zap.String("bucket", sc.Bucket))
		return s3Storage, nil
	default:
		localStorage, err := storage.NewLocalStorage(sc.Path, cfg.HTTP.PublicURL, sc.SigningSecret, logger.Named("storage"))
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		logger.Info("storing payloads on disk", zap.String("path", sc.Path))
		return localStorage, nil
	}
}

func newIdentity(ctx context.Context, cfg *config.Config, logger *zap.Logger) (auth.Provider, *auth.Verifier, error) {
	ac := cfg.Auth
	switch ac.Provider {
	case "cognito":
		keys, err := auth.NewRemoteKeyfunc(ctx, auth.CognitoJWKSURL(ac.Cognito.Region, ac.Cognito.UserPoolID))
		if err != nil {
			return nil, nil, fmt.Errorf("load cognito signing keys: %w", err)
		}

		verifier, err := auth.NewVerifier(auth.VerifierConfig{
			RSAKeyfunc: keys,
			Issuer:     auth.CognitoIssuer(ac.Cognito.Region, ac.Cognito.UserPoolID),
			Audience:   ac.Cognito.ClientID,
		})
		if err != nil {
			return nil, nil, err
		}

		provider, err := auth.NewCognitoProvider(ctx, auth.CognitoConfig{
			Region:       ac.Cognito.Region,
			UserPoolID:   ac.Cognito.UserPoolID,
			ClientID:     ac.Cognito.ClientID,
			ClientSecret: ac.Cognito.ClientSecret,
		}, verifier, logger.Named("cognito"))
		if err != nil {
			return nil, nil, fmt.Errorf("init cognito provider: %w", err)
		}
		logger.Info("using cognito identity provider", zap.String("user_pool_id", ac.Cognito.UserPoolID))
		return provider, verifier, nil
	default:
		verifier, err := auth.NewVerifier(auth.VerifierConfig{HMACSecret: ac.JWTSecret, Issuer: ac.Issuer})
		if err != nil {
			return nil, nil, err
		}

		users := make([]auth.LocalUser, 0, len(ac.LocalUsers))
		for _, u := range ac.LocalUsers {
			users = append(users, auth.LocalUser{Username: u.Username, PasswordHash: u.PasswordHash, Email: u.Email})
		}
		logger.Warn("using local identity provider", zap.Int("users", len(users)))
		return auth.NewLocalProvider(users, ac.JWTSecret, ac.Issuer, "", ac.TokenTTL), verifier, nil
	}
}
