package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FindSubscription returns the subscription of subscriber to channel, or ErrNotFound.
func (r *Repository) FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.coll(models.CollectionSubscriptions).FindOne(ctx, bson.M{"subscriber": subscriber, "channel": channel}).Decode(&sub)
	if err != nil {
		return nil, WrapError(err, "find subscription")
	}
	return &sub, nil
}

// CreateSubscription subscribes subscriber to channel.
func (r *Repository) CreateSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	sub := &models.Subscription{ID: primitive.NewObjectID(), Subscriber: subscriber, Channel: channel}
	sub.Touch(r.now())

	if _, err := r.coll(models.CollectionSubscriptions).InsertOne(ctx, sub); err != nil {
		return nil, WrapError(err, "create subscription")
	}
	return sub, nil
}

// DeleteSubscription unsubscribes subscriber from channel.
func (r *Repository) DeleteSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error {
	res, err := r.coll(models.CollectionSubscriptions).DeleteOne(ctx, bson.M{"subscriber": subscriber, "channel": channel})
	if err != nil {
		return WrapError(err, "delete subscription")
	}
	if res.DeletedCount == 0 {
		return WrapError(mongo.ErrNoDocuments, "delete subscription")
	}
	return nil
}

// CountSubscribers returns the number of subscribers of a channel.
func (r *Repository) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	n, err := r.coll(models.CollectionSubscriptions).CountDocuments(ctx, bson.M{"channel": channel})
	if err != nil {
		return 0, WrapError(err, "count subscribers")
	}
	return n, nil
}

func channelSubscribersPipeline(channel primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"channel": channel}),
		sortStage("createdAt", true),
		lookupStage(models.CollectionUsers, "subscriber", "_id", "subscriber", ownerSummaryProjection()),
		unwindStage("$subscriber"),
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$subscriber"}}},
	}
}

// ChannelSubscribers lists the users subscribed to channel.
func (r *Repository) ChannelSubscribers(ctx context.Context, channel primitive.ObjectID) (*models.ChannelSubscribers, error) {
	users, err := aggregate[models.OwnerSummary](ctx, r.coll(models.CollectionSubscriptions), channelSubscribersPipeline(channel))
	if err != nil {
		return nil, WrapError(err, "channel subscribers")
	}
	return &models.ChannelSubscribers{
		SubscribersCount: int64(len(users)),
		Subscribers:      users,
	}, nil
}

func subscribedChannelsPipeline(subscriber primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"subscriber": subscriber}),
		sortStage("createdAt", true),
		lookupStage(models.CollectionUsers, "channel", "_id", "channel",
			lookupStage(models.CollectionSubscriptions, "_id", "channel", "subscribers"),
			addFieldsStage(bson.M{"subscriberCount": sizeOf("$subscribers")}),
			projectStage(bson.M{
				"_id":             1,
				"username":        1,
				"fullName":        1,
				"avatar.url":      1,
				"subscriberCount": 1,
			}),
		),
		unwindStage("$channel"),
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$channel"}}},
	}
}

// SubscribedChannels lists the channels subscriber follows.
func (r *Repository) SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscribedChannel, error) {
	channels, err := aggregate[models.SubscribedChannel](ctx, r.coll(models.CollectionSubscriptions), subscribedChannelsPipeline(subscriber))
	if err != nil {
		return nil, WrapError(err, "subscribed channels")
	}
	return channels, nil
}
