package repository

import (
	"context"
	"strings"

	"github.com/videotube/videotube-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// publicUserProjection strips credentials from user reads.
var publicUserProjection = bson.M{"password": 0, "refreshToken": 0}

// CreateUser inserts a new user and sets its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.Touch(r.now())
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}

	_, err := r.coll(models.CollectionUsers).InsertOne(ctx, user)
	return WrapError(err, "create user")
}

// GetUserByID returns the full user document including credentials.
func (r *Repository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll(models.CollectionUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, WrapError(err, "get user by id")
	}
	return &user, nil
}

// GetPublicUserByID returns the user without password and refresh token.
func (r *Repository) GetPublicUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(publicUserProjection)
	err := r.coll(models.CollectionUsers).FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		return nil, WrapError(err, "get public user by id")
	}
	return &user, nil
}

// GetUserByUsername looks a user up by its (lowercase) username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(publicUserProjection)
	filter := bson.M{"username": strings.ToLower(username)}
	if err := r.coll(models.CollectionUsers).FindOne(ctx, filter, opts).Decode(&user); err != nil {
		return nil, WrapError(err, "get user by username")
	}
	return &user, nil
}

// FindUserForLogin matches any of the provided identifiers and returns the
// full document so the password can be checked.
func (r *Repository) FindUserForLogin(ctx context.Context, username, email string) (*models.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": strings.ToLower(username)})
	}
	if email != "" {
		or = append(or, bson.M{"email": strings.ToLower(email)})
	}
	if len(or) == 0 {
		return nil, WrapError(mongo.ErrNoDocuments, "find user for login")
	}

	var user models.User
	if err := r.coll(models.CollectionUsers).FindOne(ctx, bson.M{"$or": or}).Decode(&user); err != nil {
		return nil, WrapError(err, "find user for login")
	}
	return &user, nil
}

// UsernameOrEmailTaken reports whether another user (not exclude) already owns
// the username or email. Empty values are ignored.
func (r *Repository) UsernameOrEmailTaken(ctx context.Context, username, email string, exclude primitive.ObjectID) (bool, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": strings.ToLower(username)})
	}
	if email != "" {
		or = append(or, bson.M{"email": strings.ToLower(email)})
	}
	if len(or) == 0 {
		return false, nil
	}

	filter := bson.M{"$or": or}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	n, err := r.coll(models.CollectionUsers).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, WrapError(err, "check username or email")
	}
	return n > 0, nil
}

// SetRefreshToken stores the user's current refresh token; an empty token unsets it.
func (r *Repository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": r.now()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": r.now()},
		}
	}

	res, err := r.coll(models.CollectionUsers).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return WrapError(err, "set refresh token")
	}
	if res.MatchedCount == 0 {
		return WrapError(mongo.ErrNoDocuments, "set refresh token")
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.coll(models.CollectionUsers).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": r.now()}},
	)
	if err != nil {
		return WrapError(err, "update password")
	}
	if res.MatchedCount == 0 {
		return WrapError(mongo.ErrNoDocuments, "update password")
	}
	return nil
}

// UpdateUser applies the non-nil fields of upd and returns the public user.
func (r *Repository) UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": r.now()}
	if upd.FullName != nil {
		set["fullName"] = *upd.FullName
	}
	if upd.Email != nil {
		set["email"] = strings.ToLower(*upd.Email)
	}
	if upd.Username != nil {
		set["username"] = strings.ToLower(*upd.Username)
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if upd.CoverImage != nil {
		set["coverImage"] = *upd.CoverImage
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicUserProjection)

	var user models.User
	err := r.coll(models.CollectionUsers).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, WrapError(err, "update user")
	}
	return &user, nil
}

// AddToWatchHistory records videoID in the user's history once.
func (r *Repository) AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	_, err := r.coll(models.CollectionUsers).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"watchHistory": videoID}},
	)
	return WrapError(err, "add to watch history")
}

// channelProfilePipeline builds the channel page of username as seen by viewer.
func channelProfilePipeline(username string, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"username": strings.ToLower(username)}),
		lookupStage(models.CollectionSubscriptions, "_id", "channel", "subscribers"),
		lookupStage(models.CollectionSubscriptions, "_id", "subscriber", "subscribedTo"),
		addFieldsStage(bson.M{
			"subscribersCount":  sizeOf("$subscribers"),
			"subscribedToCount": sizeOf("$subscribedTo"),
			"isSubscribed":      viewerIn(viewer, "$subscribers.subscriber"),
		}),
		projectStage(bson.M{
			"fullName":          1,
			"username":          1,
			"avatar":            1,
			"coverImage":        1,
			"email":             1,
			"subscribersCount":  1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
		}),
	}
}

// ChannelProfile returns the channel page of username.
func (r *Repository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	profiles, err := aggregate[models.ChannelProfile](ctx, r.coll(models.CollectionUsers), channelProfilePipeline(username, viewer))
	if err != nil {
		return nil, WrapError(err, "channel profile")
	}
	if len(profiles) == 0 {
		return nil, WrapError(mongo.ErrNoDocuments, "channel profile")
	}
	return &profiles[0], nil
}

func watchHistoryPipeline(userID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"_id": userID}),
		lookupStage(models.CollectionVideos, "watchHistory", "_id", "watchedVideos", videoCardPipeline()...),
		unwindStage("$watchedVideos"),
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$watchedVideos"}}},
	}
}

// WatchHistory returns the videos the user has watched.
func (r *Repository) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoCard, error) {
	videos, err := aggregate[models.VideoCard](ctx, r.coll(models.CollectionUsers), watchHistoryPipeline(userID))
	if err != nil {
		return nil, WrapError(err, "watch history")
	}
	return videos, nil
}
