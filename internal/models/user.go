package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account; every user is also a channel.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Avatar       Asset                `bson:"avatar" json:"avatar"`
	CoverImage   *Asset               `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	Password     string               `bson:"password,omitempty" json:"-"`
	RefreshToken string               `bson:"refreshToken,omitempty" json:"-"`
	Timestamps   `bson:",inline"`
}

// Public returns a copy without credentials.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	cp.RefreshToken = ""
	if cp.WatchHistory == nil {
		cp.WatchHistory = []primitive.ObjectID{}
	}
	return &cp
}

// UserUpdate holds optional profile fields; nil fields are left untouched.
type UserUpdate struct {
	FullName   *string
	Email      *string
	Username   *string
	Avatar     *Asset
	CoverImage *Asset
}

// IsEmpty reports whether no field is set.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Username == nil && u.Avatar == nil && u.CoverImage == nil
}

// OwnerSummary is the embedded owner shape used by joined views.
type OwnerSummary struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username string             `bson:"username,omitempty" json:"username,omitempty"`
	FullName string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Avatar   *Asset             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// ChannelProfile is the public channel page of a user.
type ChannelProfile struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	FullName          string             `bson:"fullName" json:"fullName"`
	Username          string             `bson:"username" json:"username"`
	Email             string             `bson:"email" json:"email"`
	Avatar            *Asset             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CoverImage        *Asset             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscribersCount  int64              `bson:"subscribersCount" json:"subscribersCount"`
	SubscribedToCount int64              `bson:"subscribedToCount" json:"subscribedToCount"`
	IsSubscribed      bool               `bson:"isSubscribed" json:"isSubscribed"`
}

// DashboardStats summarises a channel for its owner.
type DashboardStats struct {
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalLikes       int64 `json:"totalLikes"`
}

// AuthResult is returned by login.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
