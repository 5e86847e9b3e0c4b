package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type channelTotals struct {
	TotalViews int64 `bson:"totalViews"`
	TotalLikes int64 `bson:"totalLikes"`
}

// channelTotalsPipeline sums views and video likes over every video of owner.
func channelTotalsPipeline(owner primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"owner": owner}),
		lookupStage(models.CollectionLikes, "_id", "video", "likes"),
		bson.D{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalViews": bson.M{"$sum": "$views"},
			"totalLikes": bson.M{"$sum": sizeOf("$likes")},
		}}},
	}
}

// DashboardStats aggregates the owner's channel statistics. Every total is
// zero for an empty channel.
func (r *Repository) DashboardStats(ctx context.Context, owner primitive.ObjectID) (*models.DashboardStats, error) {
	totals, err := aggregate[channelTotals](ctx, r.coll(models.CollectionVideos), channelTotalsPipeline(owner))
	if err != nil {
		return nil, WrapError(err, "dashboard totals")
	}

	videos, err := r.coll(models.CollectionVideos).CountDocuments(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, WrapError(err, "dashboard videos")
	}

	subscribers, err := r.CountSubscribers(ctx, owner)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalVideos: videos, TotalSubscribers: subscribers}
	if len(totals) > 0 {
		stats.TotalViews = totals[0].TotalViews
		stats.TotalLikes = totals[0].TotalLikes
	}
	return stats, nil
}
