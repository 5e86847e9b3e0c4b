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

	"github.com/videotube/videotube-api/internal/auth"
	"github.com/videotube/videotube-api/internal/cache"
	"github.com/videotube/videotube-api/internal/config"
	"github.com/videotube/videotube-api/internal/events"
	"github.com/videotube/videotube-api/internal/handler"
	"github.com/videotube/videotube-api/internal/media"
	"github.com/videotube/videotube-api/internal/middleware"
	"github.com/videotube/videotube-api/internal/repository"
	"github.com/videotube/videotube-api/internal/service"
	"github.com/videotube/videotube-api/internal/validation"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx := context.Background()

	client, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("Failed to disconnect from mongo", zap.Error(err))
		}
	}()

	repo := repository.New(client.Database(cfg.Mongo.Database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info("Database connection established",
		zap.String("database", cfg.Mongo.Database),
		zap.Uint64("maxPoolSize", cfg.Mongo.MaxPoolSize),
	)

	store, err := media.NewMinioStore(ctx, cfg.Media)
	if err != nil {
		return err
	}

	views, err := cache.NewViewTracker(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, every video request counts as a view", zap.Error(err))
		views = cache.DisabledViewTracker{}
	}
	defer views.Close()

	publisher, err := events.NewPublisher(cfg.RabbitMQ)
	if err != nil {
		log.Warn("RabbitMQ unavailable, domain events are dropped", zap.Error(err))
		publisher = events.NoopPublisher{}
	}
	defer publisher.Close()

	if err := os.MkdirAll(cfg.Server.TempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth)
	passwords := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	v := validation.New()

	uploads := handler.Uploads{Dir: cfg.Server.TempDir, MaxSize: cfg.Server.MaxUploadSize}
	cookies := handler.CookieConfig{
		Secure:     cfg.Server.CookieSecure,
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	}

	router := handler.NewRouter(handler.Handlers{
		Health:        handler.NewHealthHandler(repo, publisher),
		Users:         handler.NewUserHandler(service.NewUserService(repo, store, tokens, passwords, publisher, v), uploads, cookies, v),
		Videos:        handler.NewVideoHandler(service.NewVideoService(repo, store, views, publisher, v), uploads),
		Comments:      handler.NewCommentHandler(service.NewCommentService(repo, v), v),
		Likes:         handler.NewLikeHandler(service.NewLikeService(repo)),
		Subscriptions: handler.NewSubscriptionHandler(service.NewSubscriptionService(repo)),
		Playlists:     handler.NewPlaylistHandler(service.NewPlaylistService(repo, v), v),
		Tweets:        handler.NewTweetHandler(service.NewTweetService(repo, v), v),
	}, middleware.NewJWTAuth(tokens, repo), cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				log.Error("Failed to close server", zap.Error(err))
			}
			return err
		}

		log.Info("Server stopped gracefully")
	}
	return nil
}
