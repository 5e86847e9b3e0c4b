package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Aggregation stage builders shared by the joined views.

func matchStage(filter bson.M) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

// lookupStage joins `from` on localField == foreignField. An optional
// sub-pipeline runs against the joined documents.
func lookupStage(from, localField, foreignField, as string, pipeline ...bson.D) bson.D {
	lookup := bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	}
	if len(pipeline) > 0 {
		lookup = append(lookup, bson.E{Key: "pipeline", Value: mongo.Pipeline(pipeline)})
	}
	return bson.D{{Key: "$lookup", Value: lookup}}
}

func unwindStage(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: path}}
}

func addFieldsStage(fields bson.M) bson.D {
	return bson.D{{Key: "$addFields", Value: fields}}
}

func projectStage(fields bson.M) bson.D {
	return bson.D{{Key: "$project", Value: fields}}
}

// sortStage sorts on field with _id as a stable tie-breaker.
func sortStage(field string, desc bool) bson.D {
	dir := 1
	if desc {
		dir = -1
	}
	keys := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		keys = append(keys, bson.E{Key: "_id", Value: dir})
	}
	return bson.D{{Key: "$sort", Value: keys}}
}

func skipStage(n int64) bson.D {
	return bson.D{{Key: "$skip", Value: n}}
}

func limitStage(n int64) bson.D {
	return bson.D{{Key: "$limit", Value: n}}
}

func sizeOf(path string) bson.M {
	return bson.M{"$size": path}
}

// viewerIn evaluates to true when viewer appears in the array at path.
// An anonymous viewer (zero id) never matches.
func viewerIn(viewer primitive.ObjectID, path string) bson.M {
	var v interface{}
	if !viewer.IsZero() {
		v = viewer
	}
	return bson.M{"$cond": bson.M{
		"if":   bson.M{"$in": bson.A{v, path}},
		"then": true,
		"else": false,
	}}
}

// ownerSummaryProjection is the owner shape embedded in joined views.
func ownerSummaryProjection() bson.D {
	return projectStage(bson.M{"_id": 1, "username": 1, "fullName": 1, "avatar": 1})
}

// videoCardPipeline joins a video with its owner and trims it to a VideoCard.
// Shared by watch history and liked videos.
func videoCardPipeline() []bson.D {
	return []bson.D{
		lookupStage(models.CollectionUsers, "owner", "_id", "owner"),
		unwindStage("$owner"),
		projectStage(bson.M{
			"_id":              1,
			"title":            1,
			"thumbnail":        1,
			"duration":         1,
			"views":            1,
			"createdAt":        1,
			"owner._id":        1,
			"owner.username":   1,
			"owner.avatar.url": 1,
			"owner.fullName":   1,
		}),
	}
}

// decodeAll drains the cursor into a non-nil slice.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// aggregate runs the pipeline on coll and decodes all results.
func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](ctx, cur)
}
