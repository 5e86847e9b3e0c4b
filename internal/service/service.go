// Package service implements the use cases of the video platform on top of
// the document store, the media host and the event publisher.
package service

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/media"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/repository"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNotOwner = "You do not have permission to perform this action"

func notOwner() *apierror.Error {
	return apierror.Unauthorized(msgNotOwner)
}

// requireOwner fails unless viewer owns the document.
func requireOwner(viewer, owner primitive.ObjectID) error {
	if viewer.IsZero() || viewer != owner {
		return notOwner()
	}
	return nil
}

// notFoundAs maps a repository not-found error to a client 404 with message
// and wraps anything else with op.
func notFoundAs(err error, message, op string) error {
	if repository.IsNotFound(err) {
		return apierror.NotFound(message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toAsset(a *media.Asset) models.Asset {
	if a == nil {
		return models.Asset{}
	}
	return models.Asset{URL: a.URL, PublicID: a.PublicID}
}

// discardAsset deletes an uploaded file whose document write failed.
func discardAsset(ctx context.Context, store media.Store, publicID string) {
	if publicID == "" {
		return
	}
	if err := store.Delete(ctx, publicID); err != nil {
		logger.L().Warn("Failed to delete orphaned media",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}
}

var (
	_ UserStore         = (*repository.Repository)(nil)
	_ VideoStore        = (*repository.Repository)(nil)
	_ CommentStore      = (*repository.Repository)(nil)
	_ LikeStore         = (*repository.Repository)(nil)
	_ SubscriptionStore = (*repository.Repository)(nil)
	_ PlaylistStore     = (*repository.Repository)(nil)
	_ TweetStore        = (*repository.Repository)(nil)
)
