package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is an uploaded video.
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	VideoFile   Asset              `bson:"videoFile" json:"videoFile"`
	Thumbnail   Asset              `bson:"thumbnail" json:"thumbnail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Timestamps  `bson:",inline"`
}

// VideoUpdate holds the mutable fields of a video.
type VideoUpdate struct {
	Title       string
	Description string
	Thumbnail   Asset
}

// VideoQuery drives the public video listing.
type VideoQuery struct {
	Page
	Query    string
	SortBy   string
	SortDesc bool
}

// VideoCard is a video in listings, history and liked-video views.
type VideoCard struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	VideoFile   *Asset             `bson:"videoFile,omitempty" json:"videoFile,omitempty"`
	Thumbnail   *Asset             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	Owner       *OwnerSummary      `bson:"owner,omitempty" json:"owner,omitempty"`
}

// VideoOwner is the channel block of the video detail page.
type VideoOwner struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Username        string             `bson:"username" json:"username"`
	Avatar          *Asset             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	SubscriberCount int64              `bson:"subscriberCount" json:"subscriberCount"`
	IsSubscribed    bool               `bson:"isSubscribed" json:"isSubscribed"`
}

// VideoDetail is the watch page of a video.
type VideoDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	VideoFile   *Asset             `bson:"videoFile,omitempty" json:"videoFile,omitempty"`
	Thumbnail   *Asset             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	LikesCount  int64              `bson:"likesCount" json:"likesCount"`
	IsLiked     bool               `bson:"isLiked" json:"isLiked"`
	Comments    []Comment          `bson:"comments" json:"comments"`
	Owner       VideoOwner         `bson:"owner" json:"owner"`
}
