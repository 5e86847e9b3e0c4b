// Package repository provides document store operations for the video platform.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/videotube/videotube-api/internal/config"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Repository handles all document store operations.
type Repository struct {
	db  *mongo.Database
	now func() time.Time
}

// New creates a new Repository on the given database.
func New(db *mongo.Database) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens a client, verifies it with a ping and returns it.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

func (r *Repository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// Ping checks the database connection health.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique and lookup indexes the application relies on.
// Like uniqueness is per target kind, so each uses a partial index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	uniqueLike := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}, {Key: "likedBy", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
		}
	}
	plain := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}

	indexes := map[string][]mongo.IndexModel{
		models.CollectionUsers: {
			unique(bson.D{{Key: "username", Value: 1}}),
			unique(bson.D{{Key: "email", Value: 1}}),
		},
		models.CollectionVideos: {
			plain("owner"),
			mongo.IndexModel{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		models.CollectionComments: {plain("video"), plain("owner")},
		models.CollectionLikes: {
			uniqueLike(string(models.LikeTargetVideo)),
			uniqueLike(string(models.LikeTargetComment)),
			uniqueLike(string(models.LikeTargetTweet)),
			plain("likedBy"),
		},
		models.CollectionSubscriptions: {
			unique(bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}),
			plain("channel"),
		},
		models.CollectionPlaylists: {plain("owner")},
		models.CollectionTweets:    {plain("owner")},
	}

	for name, specs := range indexes {
		created, err := r.coll(name).Indexes().CreateMany(ctx, specs)
		if err != nil {
			return WrapError(err, "create indexes on "+name)
		}
		logger.L().Debug("Indexes ensured",
			zap.String("collection", name),
			zap.Strings("indexes", created),
		)
	}

	return nil
}
