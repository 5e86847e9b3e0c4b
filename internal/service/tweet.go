package service

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgTweetNotFound = "Tweet not found"

// TweetStore is the tweet persistence used by TweetService.
type TweetStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	TweetsByOwner(ctx context.Context, owner, viewer primitive.ObjectID) ([]models.TweetView, error)
	UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id primitive.ObjectID) error
}

// TweetService manages short text posts.
type TweetService struct {
	tweets    TweetStore
	validator *validation.Validator
}

// NewTweetService creates a new TweetService instance.
func NewTweetService(tweets TweetStore, validator *validation.Validator) *TweetService {
	return &TweetService{tweets: tweets, validator: validator}
}

// Create posts a tweet as the viewer.
func (s *TweetService) Create(ctx context.Context, viewer primitive.ObjectID, content string) (*models.Tweet, error) {
	content = s.validator.Sanitize(content)
	if content == "" {
		return nil, apierror.BadRequest("Content cannot be empty")
	}

	tweet := &models.Tweet{Content: content, Owner: viewer}
	if err := s.tweets.CreateTweet(ctx, tweet); err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	return tweet, nil
}

// ByUser lists the tweets of username, newest first.
func (s *TweetService) ByUser(ctx context.Context, username string, viewer primitive.ObjectID) ([]models.TweetView, error) {
	user, err := s.tweets.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, "User not found", "user tweets")
	}

	tweets, err := s.tweets.TweetsByOwner(ctx, user.ID, viewer)
	if err != nil {
		return nil, fmt.Errorf("user tweets: %w", err)
	}
	return tweets, nil
}

func (s *TweetService) ownedTweet(ctx context.Context, id, viewer primitive.ObjectID, op string) error {
	tweet, err := s.tweets.GetTweetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, msgTweetNotFound, op)
	}
	return requireOwner(viewer, tweet.Owner)
}

// Update replaces the content of an owned tweet.
func (s *TweetService) Update(ctx context.Context, id, viewer primitive.ObjectID, content string) (*models.Tweet, error) {
	content = s.validator.Sanitize(content)
	if content == "" {
		return nil, apierror.BadRequest("Content cannot be empty")
	}
	if err := s.ownedTweet(ctx, id, viewer, "update tweet"); err != nil {
		return nil, err
	}

	tweet, err := s.tweets.UpdateTweet(ctx, id, content)
	if err != nil {
		return nil, notFoundAs(err, msgTweetNotFound, "update tweet")
	}
	return tweet, nil
}

// Delete removes an owned tweet and its likes.
func (s *TweetService) Delete(ctx context.Context, id, viewer primitive.ObjectID) error {
	if err := s.ownedTweet(ctx, id, viewer, "delete tweet"); err != nil {
		return err
	}
	if err := s.tweets.DeleteTweet(ctx, id); err != nil {
		return notFoundAs(err, msgTweetNotFound, "delete tweet")
	}
	return nil
}
