package service

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/repository"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LikeStore is the like persistence used by LikeService.
type LikeStore interface {
	TargetExists(ctx context.Context, target models.LikeTarget, id primitive.ObjectID) (bool, error)
	FindLike(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (*models.Like, error)
	CreateLike(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (*models.Like, error)
	DeleteLike(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) error
	CountLikes(ctx context.Context, target models.LikeTarget, targetID primitive.ObjectID) (int64, error)
	LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.VideoCard, error)
}

// LikeService toggles likes on videos, comments and tweets.
type LikeService struct {
	likes LikeStore
}

// NewLikeService creates a new LikeService instance.
func NewLikeService(likes LikeStore) *LikeService {
	return &LikeService{likes: likes}
}

func targetNotFound(target models.LikeTarget) *apierror.Error {
	switch target {
	case models.LikeTargetVideo:
		return apierror.NotFound(msgVideoNotFound)
	case models.LikeTargetComment:
		return apierror.NotFound(msgCommentNotFound)
	default:
		return apierror.NotFound(msgTweetNotFound)
	}
}

// Toggle likes the target when the viewer has not liked it yet and unlikes it
// otherwise. It returns the new state and the current like count.
func (s *LikeService) Toggle(ctx context.Context, target models.LikeTarget, targetID, viewer primitive.ObjectID) (*models.LikeStatus, error) {
	exists, err := s.likes.TargetExists(ctx, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	if !exists {
		return nil, targetNotFound(target)
	}

	status := &models.LikeStatus{}
	_, err = s.likes.FindLike(ctx, target, targetID, viewer)
	switch {
	case err == nil:
		if err := s.likes.DeleteLike(ctx, target, targetID, viewer); err != nil && !repository.IsNotFound(err) {
			return nil, fmt.Errorf("toggle like: %w", err)
		}
	case repository.IsNotFound(err):
		if _, err := s.likes.CreateLike(ctx, target, targetID, viewer); err != nil && !repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("toggle like: %w", err)
		}
		status.IsLiked = true
	default:
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	status.Likes, err = s.likes.CountLikes(ctx, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	logger.L().Debug("Like toggled",
		zap.String("target", string(target)),
		zap.String("targetId", targetID.Hex()),
		zap.Bool("isLiked", status.IsLiked),
	)
	return status, nil
}

// LikedVideos returns the videos the viewer liked, newest like first.
func (s *LikeService) LikedVideos(ctx context.Context, viewer primitive.ObjectID) ([]models.VideoCard, error) {
	videos, err := s.likes.LikedVideos(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("liked videos: %w", err)
	}
	return videos, nil
}
