package repository

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func likeFilter(target models.LikeTarget, targetID, userID primitive.ObjectID) bson.M {
	return bson.M{target.Field(): targetID, "likedBy": userID}
}

// TargetExists reports whether the liked document exists.
func (r *Repository) TargetExists(ctx context.Context, target models.LikeTarget, id primitive.ObjectID) (bool, error) {
	name := target.Collection()
	if name == "" {
		return false, fmt.Errorf("unknown like target %q", target)
	}

	n, err := r.coll(name).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, WrapError(err, "check like target")
	}
	return n > 0, nil
}

// FindLike returns the user's like on the target, or ErrNotFound.
func (r *Repository) FindLike(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (*models.Like, error) {
	var like models.Like
	err := r.coll(models.CollectionLikes).FindOne(ctx, likeFilter(target, targetID, userID)).Decode(&like)
	if err != nil {
		return nil, WrapError(err, "find like")
	}
	return &like, nil
}

// CreateLike records a like on the target.
func (r *Repository) CreateLike(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (*models.Like, error) {
	like := &models.Like{ID: primitive.NewObjectID(), LikedBy: userID}
	like.Touch(r.now())

	ref := targetID
	switch target {
	case models.LikeTargetVideo:
		like.Video = &ref
	case models.LikeTargetComment:
		like.Comment = &ref
	case models.LikeTargetTweet:
		like.Tweet = &ref
	default:
		return nil, fmt.Errorf("unknown like target %q", target)
	}

	if _, err := r.coll(models.CollectionLikes).InsertOne(ctx, like); err != nil {
		return nil, WrapError(err, "create like")
	}
	return like, nil
}

// DeleteLike removes the user's like on the target.
func (r *Repository) DeleteLike(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) error {
	res, err := r.coll(models.CollectionLikes).DeleteOne(ctx, likeFilter(target, targetID, userID))
	if err != nil {
		return WrapError(err, "delete like")
	}
	if res.DeletedCount == 0 {
		return WrapError(mongo.ErrNoDocuments, "delete like")
	}
	return nil
}

// CountLikes returns the number of likes on the target.
func (r *Repository) CountLikes(ctx context.Context, target models.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	n, err := r.coll(models.CollectionLikes).CountDocuments(ctx, bson.M{target.Field(): targetID})
	if err != nil {
		return 0, WrapError(err, "count likes")
	}
	return n, nil
}

func likedVideosPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"likedBy": userID, "video": bson.M{"$exists": true}}),
		sortStage("createdAt", true),
		lookupStage(models.CollectionVideos, "video", "_id", "likedVideo", videoCardPipeline()...),
		unwindStage("$likedVideo"),
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$likedVideo"}}},
	}
}

// LikedVideos returns the videos the user liked, most recent like first.
func (r *Repository) LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.VideoCard, error) {
	videos, err := aggregate[models.VideoCard](ctx, r.coll(models.CollectionLikes), likedVideosPipeline(userID))
	if err != nil {
		return nil, WrapError(err, "liked videos")
	}
	return videos, nil
}
