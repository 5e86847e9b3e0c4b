package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateComment inserts a comment and sets its ID and timestamps.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.Touch(r.now())

	_, err := r.coll(models.CollectionComments).InsertOne(ctx, comment)
	return WrapError(err, "create comment")
}

// GetCommentByID returns the stored comment.
func (r *Repository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.coll(models.CollectionComments).FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, WrapError(err, "get comment by id")
	}
	return &comment, nil
}

// commentsPipeline returns one page of a video's comments, newest first.
func commentsPipeline(videoID, viewer primitive.ObjectID, page models.Page) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"video": videoID}),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner", ownerSummaryProjection()),
		unwindStage("$owner"),
		lookupStage(models.CollectionLikes, "_id", "comment", "likes"),
		addFieldsStage(bson.M{
			"likesCount": sizeOf("$likes"),
			"isLiked":    viewerIn(viewer, "$likes.likedBy"),
		}),
		sortStage("createdAt", true),
		skipStage(page.Skip()),
		limitStage(page.Limit),
		projectStage(bson.M{
			"content":    1,
			"createdAt":  1,
			"likesCount": 1,
			"owner":      1,
			"isLiked":    1,
		}),
	}
}

// ListComments returns one page of comments on a video and the total count.
func (r *Repository) ListComments(ctx context.Context, videoID, viewer primitive.ObjectID, page models.Page) (*models.CommentPage, error) {
	comments, err := aggregate[models.CommentView](ctx, r.coll(models.CollectionComments), commentsPipeline(videoID, viewer, page))
	if err != nil {
		return nil, WrapError(err, "list comments")
	}

	total, err := r.coll(models.CollectionComments).CountDocuments(ctx, bson.M{"video": videoID})
	if err != nil {
		return nil, WrapError(err, "count comments")
	}

	return &models.CommentPage{Comments: comments, TotalComments: total}, nil
}

// UpdateComment replaces the comment content.
func (r *Repository) UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.coll(models.CollectionComments).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updatedAt": r.now()}},
		opts,
	).Decode(&comment)
	if err != nil {
		return nil, WrapError(err, "update comment")
	}
	return &comment, nil
}

// DeleteComment removes the comment and its likes.
func (r *Repository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(models.CollectionComments).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return WrapError(err, "delete comment")
	}
	if res.DeletedCount == 0 {
		return WrapError(mongo.ErrNoDocuments, "delete comment")
	}

	_, err = r.coll(models.CollectionLikes).DeleteMany(ctx, bson.M{"comment": id})
	return WrapError(err, "delete likes of deleted comment")
}
