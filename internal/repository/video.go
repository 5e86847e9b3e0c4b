package repository

import (
	"context"
	"regexp"
	"strings"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateVideo inserts a new video and sets its ID and timestamps.
func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) error {
	video.ID = primitive.NewObjectID()
	video.Touch(r.now())

	_, err := r.coll(models.CollectionVideos).InsertOne(ctx, video)
	return WrapError(err, "create video")
}

// GetVideoByID returns the stored video document.
func (r *Repository) GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	if err := r.coll(models.CollectionVideos).FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, WrapError(err, "get video by id")
	}
	return &video, nil
}

// videoListPipeline searches published titles, then sorts, skips and limits.
func videoListPipeline(q models.VideoQuery) mongo.Pipeline {
	filter := bson.M{"isPublished": true}
	if q.Query != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q.Query), "$options": "i"}
	}

	return mongo.Pipeline{
		matchStage(filter),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner", ownerSummaryProjection()),
		unwindStage("$owner"),
		projectStage(bson.M{
			"_id":           1,
			"owner":         1,
			"videoFile.url": 1,
			"thumbnail.url": 1,
			"createdAt":     1,
			"title":         1,
			"duration":      1,
			"views":         1,
		}),
		sortStage(q.SortBy, q.SortDesc),
		skipStage(q.Skip()),
		limitStage(q.Limit),
	}
}

// ListVideos returns one page of published videos.
func (r *Repository) ListVideos(ctx context.Context, q models.VideoQuery) ([]models.VideoCard, error) {
	videos, err := aggregate[models.VideoCard](ctx, r.coll(models.CollectionVideos), videoListPipeline(q))
	if err != nil {
		return nil, WrapError(err, "list videos")
	}
	return videos, nil
}

// VideosByOwner returns all videos of a channel, newest first, with the owner populated.
func (r *Repository) VideosByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.VideoCard, error) {
	pipeline := mongo.Pipeline{
		matchStage(bson.M{"owner": owner}),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner",
			projectStage(bson.M{"fullName": 1, "avatar": 1})),
		unwindStage("$owner"),
		sortStage("createdAt", true),
	}

	videos, err := aggregate[models.VideoCard](ctx, r.coll(models.CollectionVideos), pipeline)
	if err != nil {
		return nil, WrapError(err, "videos by owner")
	}
	return videos, nil
}

// recommendedPipeline finds other published videos whose title or description
// mentions any of the keywords.
func recommendedPipeline(source primitive.ObjectID, keywords []string, limit int64) mongo.Pipeline {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	pattern := strings.Join(quoted, "|")

	return mongo.Pipeline{
		matchStage(bson.M{
			"_id":         bson.M{"$ne": source},
			"isPublished": true,
			"$or": bson.A{
				bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
				bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			},
		}),
		limitStage(limit),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner",
			projectStage(bson.M{"fullName": 1, "avatar": 1})),
		unwindStage("$owner"),
	}
}

// RecommendedVideos returns up to limit videos related by keyword to source.
func (r *Repository) RecommendedVideos(ctx context.Context, source primitive.ObjectID, keywords []string, limit int64) ([]models.VideoCard, error) {
	if len(keywords) == 0 {
		return []models.VideoCard{}, nil
	}
	videos, err := aggregate[models.VideoCard](ctx, r.coll(models.CollectionVideos), recommendedPipeline(source, keywords, limit))
	if err != nil {
		return nil, WrapError(err, "recommended videos")
	}
	return videos, nil
}

// videoDetailPipeline builds the watch page of a video as seen by viewer.
func videoDetailPipeline(id, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"_id": id}),
		lookupStage(models.CollectionLikes, "_id", "video", "likes"),
		addFieldsStage(bson.M{
			"likesCount": sizeOf("$likes"),
			"isLiked":    viewerIn(viewer, "$likes.likedBy"),
		}),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner",
			lookupStage(models.CollectionSubscriptions, "_id", "channel", "subscribers"),
			addFieldsStage(bson.M{
				"subscriberCount": sizeOf("$subscribers"),
				"isSubscribed":    viewerIn(viewer, "$subscribers.subscriber"),
			}),
			projectStage(bson.M{
				"fullName":        1,
				"username":        1,
				"subscriberCount": 1,
				"isSubscribed":    1,
				"avatar":          1,
			}),
		),
		unwindStage("$owner"),
		lookupStage(models.CollectionComments, "_id", "video", "comments"),
		projectStage(bson.M{
			"videoFile.url": 1,
			"thumbnail.url": 1,
			"title":         1,
			"description":   1,
			"duration":      1,
			"views":         1,
			"createdAt":     1,
			"likesCount":    1,
			"isLiked":       1,
			"comments":      1,
			"owner":         1,
		}),
	}
}

// VideoDetail returns the watch page of a video.
func (r *Repository) VideoDetail(ctx context.Context, id, viewer primitive.ObjectID) (*models.VideoDetail, error) {
	details, err := aggregate[models.VideoDetail](ctx, r.coll(models.CollectionVideos), videoDetailPipeline(id, viewer))
	if err != nil {
		return nil, WrapError(err, "video detail")
	}
	if len(details) == 0 {
		return nil, WrapError(mongo.ErrNoDocuments, "video detail")
	}
	return &details[0], nil
}

// IncrementViews adds one view to the video.
func (r *Repository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll(models.CollectionVideos).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	return WrapError(err, "increment views")
}

func (r *Repository) findOneAndSetVideo(ctx context.Context, id primitive.ObjectID, set bson.M, op string) (*models.Video, error) {
	set["updatedAt"] = r.now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := r.coll(models.CollectionVideos).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&video)
	if err != nil {
		return nil, WrapError(err, op)
	}
	return &video, nil
}

// UpdateVideo replaces the title, description and thumbnail.
func (r *Repository) UpdateVideo(ctx context.Context, id primitive.ObjectID, upd models.VideoUpdate) (*models.Video, error) {
	return r.findOneAndSetVideo(ctx, id, bson.M{
		"title":       upd.Title,
		"description": upd.Description,
		"thumbnail":   upd.Thumbnail,
	}, "update video")
}

// SetPublished sets the publish flag.
func (r *Repository) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	return r.findOneAndSetVideo(ctx, id, bson.M{"isPublished": published}, "set published")
}

// DeleteVideo removes the video together with its comments and every like
// pointing at the video or at one of its comments.
func (r *Repository) DeleteVideo(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	if err := r.coll(models.CollectionVideos).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, WrapError(err, "delete video")
	}

	commentIDs, err := r.coll(models.CollectionComments).Distinct(ctx, "_id", bson.M{"video": id})
	if err != nil {
		return &video, WrapError(err, "list comments of deleted video")
	}

	likeFilter := bson.M{"$or": bson.A{
		bson.M{"video": id},
		bson.M{"comment": bson.M{"$in": commentIDs}},
	}}
	if _, err := r.coll(models.CollectionLikes).DeleteMany(ctx, likeFilter); err != nil {
		return &video, WrapError(err, "delete likes of deleted video")
	}
	if _, err := r.coll(models.CollectionComments).DeleteMany(ctx, bson.M{"video": id}); err != nil {
		return &video, WrapError(err, "delete comments of deleted video")
	}
	if _, err := r.coll(models.CollectionPlaylists).UpdateMany(ctx,
		bson.M{"videos": id},
		bson.M{"$pull": bson.M{"videos": id}},
	); err != nil {
		return &video, WrapError(err, "remove deleted video from playlists")
	}

	return &video, nil
}
