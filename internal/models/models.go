// Package models contains the stored documents, aggregation views and request
// DTOs of the video platform.
package models

import (
	"math"
	"time"
)

// Collection names.
const (
	CollectionUsers         = "users"
	CollectionVideos        = "videos"
	CollectionComments      = "comments"
	CollectionLikes         = "likes"
	CollectionSubscriptions = "subscriptions"
	CollectionPlaylists     = "playlists"
	CollectionTweets        = "tweets"
)

// Asset is a file stored on the media host.
type Asset struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
}

// Timestamps are set by the repositories on insert and update.
type Timestamps struct {
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Touch sets both timestamps for a new document.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Response is the success envelope returned by every endpoint.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// NewResponse builds the envelope; Success is derived from the status code.
func NewResponse(status int, data interface{}, message string) Response {
	return Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	}
}

// Page holds normalised pagination parameters.
type Page struct {
	Page  int64
	Limit int64
}

// Skip returns the number of documents before this page, saturating at
// math.MaxInt64.
func (p Page) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt64/p.Limit {
		return math.MaxInt64
	}
	return (p.Page - 1) * p.Limit
}
