package service

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStore is the subscription persistence used by SubscriptionService.
type SubscriptionStore interface {
	GetPublicUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error
	CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error)
	ChannelSubscribers(ctx context.Context, channel primitive.ObjectID) (*models.ChannelSubscribers, error)
	SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscribedChannel, error)
}

// SubscriptionService manages channel subscriptions.
type SubscriptionService struct {
	subscriptions SubscriptionStore
}

// NewSubscriptionService creates a new SubscriptionService instance.
func NewSubscriptionService(subscriptions SubscriptionStore) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions}
}

// Toggle subscribes the viewer to the channel or cancels the subscription.
func (s *SubscriptionService) Toggle(ctx context.Context, channel, viewer primitive.ObjectID) (*models.SubscriptionStatus, error) {
	if channel == viewer {
		return nil, apierror.BadRequest("You cannot subscribe to your own channel")
	}
	if _, err := s.subscriptions.GetPublicUserByID(ctx, channel); err != nil {
		return nil, notFoundAs(err, "Channel not found", "toggle subscription")
	}

	status := &models.SubscriptionStatus{}
	_, err := s.subscriptions.FindSubscription(ctx, viewer, channel)
	switch {
	case err == nil:
		if err := s.subscriptions.DeleteSubscription(ctx, viewer, channel); err != nil && !repository.IsNotFound(err) {
			return nil, fmt.Errorf("toggle subscription: %w", err)
		}
	case repository.IsNotFound(err):
		if _, err := s.subscriptions.CreateSubscription(ctx, viewer, channel); err != nil && !repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("toggle subscription: %w", err)
		}
		status.IsSubscribed = true
	default:
		return nil, fmt.Errorf("toggle subscription: %w", err)
	}

	status.Subscribers, err = s.subscriptions.CountSubscribers(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("toggle subscription: %w", err)
	}
	return status, nil
}

// Subscribers lists the users subscribed to the channel.
func (s *SubscriptionService) Subscribers(ctx context.Context, channel primitive.ObjectID) (*models.ChannelSubscribers, error) {
	subs, err := s.subscriptions.ChannelSubscribers(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("channel subscribers: %w", err)
	}
	return subs, nil
}

// SubscribedChannels lists the channels username subscribes to.
func (s *SubscriptionService) SubscribedChannels(ctx context.Context, username string) ([]models.SubscribedChannel, error) {
	user, err := s.subscriptions.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, "User not found", "subscribed channels")
	}

	channels, err := s.subscriptions.SubscribedChannels(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("subscribed channels: %w", err)
	}
	return channels, nil
}
