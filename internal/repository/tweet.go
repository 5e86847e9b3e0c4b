package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateTweet inserts a tweet.
func (r *Repository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	tweet.ID = primitive.NewObjectID()
	tweet.Touch(r.now())

	_, err := r.coll(models.CollectionTweets).InsertOne(ctx, tweet)
	return WrapError(err, "create tweet")
}

// GetTweetByID returns the stored tweet.
func (r *Repository) GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.coll(models.CollectionTweets).FindOne(ctx, bson.M{"_id": id}).Decode(&tweet); err != nil {
		return nil, WrapError(err, "get tweet by id")
	}
	return &tweet, nil
}

func tweetsByOwnerPipeline(owner, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"owner": owner}),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner",
			projectStage(bson.M{"username": 1, "fullName": 1, "avatar": 1})),
		unwindStage("$owner"),
		lookupStage(models.CollectionLikes, "_id", "tweet", "likes"),
		addFieldsStage(bson.M{
			"likesCount": sizeOf("$likes"),
			"isLiked":    viewerIn(viewer, "$likes.likedBy"),
		}),
		sortStage("createdAt", true),
		projectStage(bson.M{
			"content":    1,
			"owner":      1,
			"likesCount": 1,
			"createdAt":  1,
			"updatedAt":  1,
			"isLiked":    1,
		}),
	}
}

// TweetsByOwner lists a user's tweets, newest first, as seen by viewer.
func (r *Repository) TweetsByOwner(ctx context.Context, owner, viewer primitive.ObjectID) ([]models.TweetView, error) {
	tweets, err := aggregate[models.TweetView](ctx, r.coll(models.CollectionTweets), tweetsByOwnerPipeline(owner, viewer))
	if err != nil {
		return nil, WrapError(err, "tweets by owner")
	}
	return tweets, nil
}

// UpdateTweet replaces the tweet content.
func (r *Repository) UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var tweet models.Tweet
	err := r.coll(models.CollectionTweets).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updatedAt": r.now()}},
		opts,
	).Decode(&tweet)
	if err != nil {
		return nil, WrapError(err, "update tweet")
	}
	return &tweet, nil
}

// DeleteTweet removes the tweet and its likes.
func (r *Repository) DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(models.CollectionTweets).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return WrapError(err, "delete tweet")
	}
	if res.DeletedCount == 0 {
		return WrapError(mongo.ErrNoDocuments, "delete tweet")
	}

	_, err = r.coll(models.CollectionLikes).DeleteMany(ctx, bson.M{"tweet": id})
	return WrapError(err, "delete likes of deleted tweet")
}
