package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a comment on a video.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content    string             `bson:"content" json:"content"`
	Video      primitive.ObjectID `bson:"video" json:"video"`
	Owner      primitive.ObjectID `bson:"owner" json:"owner"`
	Timestamps `bson:",inline"`
}

// CommentView is a comment with its author and like state.
type CommentView struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Content    string             `bson:"content" json:"content"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	Owner      OwnerSummary       `bson:"owner" json:"owner"`
	LikesCount int64              `bson:"likesCount" json:"likesCount"`
	IsLiked    bool               `bson:"isLiked" json:"isLiked"`
}

// CommentPage is one page of a video's comments.
type CommentPage struct {
	Comments      []CommentView `json:"comments"`
	TotalComments int64         `json:"totalComments"`
}

// LikeTarget names the kind of document a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Field returns the like document field holding the target reference.
func (t LikeTarget) Field() string {
	return string(t)
}

// Collection returns the collection the target lives in.
func (t LikeTarget) Collection() string {
	switch t {
	case LikeTargetVideo:
		return CollectionVideos
	case LikeTargetComment:
		return CollectionComments
	case LikeTargetTweet:
		return CollectionTweets
	default:
		return ""
	}
}

// Like records that a user liked exactly one video, comment or tweet.
type Like struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Video      *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment    *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet      *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	LikedBy    primitive.ObjectID  `bson:"likedBy" json:"likedBy"`
	Timestamps `bson:",inline"`
}

// LikeStatus is the result of a like toggle.
type LikeStatus struct {
	IsLiked bool  `json:"isLiked"`
	Likes   int64 `json:"likes"`
}

// Subscription links a subscriber to a channel (both users).
type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	Timestamps `bson:",inline"`
}

// SubscriptionStatus is the result of a subscription toggle.
type SubscriptionStatus struct {
	Subscribers  int64 `json:"subscribers"`
	IsSubscribed bool  `json:"isSubscribed"`
}

// ChannelSubscribers lists who subscribes to a channel.
type ChannelSubscribers struct {
	SubscribersCount int64          `json:"subscribersCount"`
	Subscribers      []OwnerSummary `json:"subscribers"`
}

// SubscribedChannel is a channel in a user's subscription list.
type SubscribedChannel struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	Username        string             `bson:"username" json:"username"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Avatar          *Asset             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	SubscriberCount int64              `bson:"subscriberCount" json:"subscriberCount"`
}

// Tweet is a short text post.
type Tweet struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content    string             `bson:"content" json:"content"`
	Owner      primitive.ObjectID `bson:"owner" json:"owner"`
	Timestamps `bson:",inline"`
}

// TweetView is a tweet with its author and like state.
type TweetView struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Content    string             `bson:"content" json:"content"`
	LikesCount int64              `bson:"likesCount" json:"likesCount"`
	IsLiked    bool               `bson:"isLiked" json:"isLiked"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
	Owner      OwnerSummary       `bson:"owner" json:"owner"`
}

// Playlist is an ordered set of videos curated by a user.
type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Timestamps  `bson:",inline"`
}

// Contains reports whether videoID is in the playlist.
func (p *Playlist) Contains(videoID primitive.ObjectID) bool {
	for _, id := range p.Videos {
		if id == videoID {
			return true
		}
	}
	return false
}

// PlaylistSummary is a playlist in a user's playlist listing.
type PlaylistSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	TotalVideos int64              `bson:"totalVideos" json:"totalVideos"`
	Videos      []struct {
		Thumbnail *Asset `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	} `bson:"videos" json:"videos"`
}

// PlaylistOwner is the owner block of a playlist page.
type PlaylistOwner struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Avatar          *Asset             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	SubscriberCount int64              `bson:"subscriberCount" json:"subscriberCount"`
}

// PlaylistDetail is a playlist page with its videos.
type PlaylistDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	Owner       PlaylistOwner      `bson:"owner" json:"owner"`
	Videos      []VideoCard        `bson:"videos" json:"videos"`
}
