// Package cache de-duplicates video views in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/videotube/videotube-api/internal/config"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.uber.org/zap"
)

// ViewTracker decides whether a view of a video should be counted.
type ViewTracker interface {
	// FirstView reports whether viewerKey has not viewed videoID within the
	// tracking window, and records the view.
	FirstView(ctx context.Context, videoID, viewerKey string) (bool, error)
	Close() error
}

// RedisViewTracker remembers each (video, viewer) pair for a fixed window.
type RedisViewTracker struct {
	client *redis.Client
	window time.Duration
}

// NewViewTracker returns a Redis tracker when an address is configured and a
// tracker that counts every view otherwise.
func NewViewTracker(ctx context.Context, cfg config.RedisConfig) (ViewTracker, error) {
	if cfg.Addr == "" {
		logger.L().Info("Redis not configured, every video view is counted")
		return DisabledViewTracker{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.L().Info("Connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Duration("view_window", cfg.ViewWindow),
	)
	return NewRedisViewTracker(client, cfg.ViewWindow), nil
}

// NewRedisViewTracker wraps an existing client.
func NewRedisViewTracker(client *redis.Client, window time.Duration) *RedisViewTracker {
	return &RedisViewTracker{client: client, window: window}
}

func viewKey(videoID, viewerKey string) string {
	return fmt.Sprintf("videotube:view:%s:%s", videoID, viewerKey)
}

// FirstView implements ViewTracker with SET NX EX.
func (t *RedisViewTracker) FirstView(ctx context.Context, videoID, viewerKey string) (bool, error) {
	ok, err := t.client.SetNX(ctx, viewKey(videoID, viewerKey), 1, t.window).Result()
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	return ok, nil
}

// Close releases the client.
func (t *RedisViewTracker) Close() error {
	return t.client.Close()
}

// DisabledViewTracker counts every view.
type DisabledViewTracker struct{}

// FirstView always reports a first view.
func (DisabledViewTracker) FirstView(context.Context, string, string) (bool, error) {
	return true, nil
}

// Close is a no-op.
func (DisabledViewTracker) Close() error { return nil }
