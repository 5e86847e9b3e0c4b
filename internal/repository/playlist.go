package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreatePlaylist inserts an empty playlist.
func (r *Repository) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	playlist.ID = primitive.NewObjectID()
	playlist.Touch(r.now())
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}

	_, err := r.coll(models.CollectionPlaylists).InsertOne(ctx, playlist)
	return WrapError(err, "create playlist")
}

// GetPlaylistByID returns the stored playlist.
func (r *Repository) GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.coll(models.CollectionPlaylists).FindOne(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		return nil, WrapError(err, "get playlist by id")
	}
	return &playlist, nil
}

func playlistsByOwnerPipeline(owner primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"owner": owner}),
		sortStage("createdAt", true),
		lookupStage(models.CollectionVideos, "videos", "_id", "videos",
			projectStage(bson.M{"thumbnail": 1})),
		addFieldsStage(bson.M{"totalVideos": sizeOf("$videos")}),
		projectStage(bson.M{
			"name":             1,
			"description":      1,
			"createdAt":        1,
			"owner":            1,
			"videos.thumbnail": 1,
			"totalVideos":      1,
		}),
	}
}

// PlaylistsByOwner lists the playlists of a user, newest first.
func (r *Repository) PlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistSummary, error) {
	playlists, err := aggregate[models.PlaylistSummary](ctx, r.coll(models.CollectionPlaylists), playlistsByOwnerPipeline(owner))
	if err != nil {
		return nil, WrapError(err, "playlists by owner")
	}
	return playlists, nil
}

func playlistDetailPipeline(id primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"_id": id}),
		lookupStage(models.CollectionUsers, "owner", "_id", "owner",
			lookupStage(models.CollectionSubscriptions, "_id", "channel", "subscribers"),
			addFieldsStage(bson.M{"subscriberCount": sizeOf("$subscribers")}),
			projectStage(bson.M{"avatar": 1, "fullName": 1, "subscriberCount": 1}),
		),
		unwindStage("$owner"),
		lookupStage(models.CollectionVideos, "videos", "_id", "videos",
			lookupStage(models.CollectionUsers, "owner", "_id", "owner",
				projectStage(bson.M{"avatar": 1, "fullName": 1})),
			unwindStage("$owner"),
			projectStage(bson.M{
				"_id":         1,
				"title":       1,
				"description": 1,
				"views":       1,
				"duration":    1,
				"thumbnail":   1,
				"owner":       1,
				"createdAt":   1,
			}),
		),
	}
}

// PlaylistDetail returns a playlist page with its owner and videos.
func (r *Repository) PlaylistDetail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	details, err := aggregate[models.PlaylistDetail](ctx, r.coll(models.CollectionPlaylists), playlistDetailPipeline(id))
	if err != nil {
		return nil, WrapError(err, "playlist detail")
	}
	if len(details) == 0 {
		return nil, WrapError(mongo.ErrNoDocuments, "playlist detail")
	}
	return &details[0], nil
}

func (r *Repository) updatePlaylist(ctx context.Context, id primitive.ObjectID, update bson.M, op string) (*models.Playlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	if err := r.coll(models.CollectionPlaylists).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&playlist); err != nil {
		return nil, WrapError(err, op)
	}
	return &playlist, nil
}

// AddVideoToPlaylist appends videoID unless it is already present.
func (r *Repository) AddVideoToPlaylist(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.updatePlaylist(ctx, id, bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": r.now()},
	}, "add video to playlist")
}

// RemoveVideoFromPlaylist pulls videoID from the playlist.
func (r *Repository) RemoveVideoFromPlaylist(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.updatePlaylist(ctx, id, bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": r.now()},
	}, "remove video from playlist")
}

// UpdatePlaylist sets name and description.
func (r *Repository) UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error) {
	return r.updatePlaylist(ctx, id, bson.M{
		"$set": bson.M{"name": name, "description": description, "updatedAt": r.now()},
	}, "update playlist")
}

// DeletePlaylist removes the playlist and returns it.
func (r *Repository) DeletePlaylist(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.coll(models.CollectionPlaylists).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		return nil, WrapError(err, "delete playlist")
	}
	return &playlist, nil
}
