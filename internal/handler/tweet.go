package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/videotube/videotube-api/internal/middleware"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TweetService is the tweet logic used by TweetHandler.
type TweetService interface {
	Create(ctx context.Context, viewer primitive.ObjectID, content string) (*models.Tweet, error)
	ByUser(ctx context.Context, username string, viewer primitive.ObjectID) ([]models.TweetView, error)
	Update(ctx context.Context, id, viewer primitive.ObjectID, content string) (*models.Tweet, error)
	Delete(ctx context.Context, id, viewer primitive.ObjectID) error
}

// TweetHandler handles tweet endpoints.
type TweetHandler struct {
	tweets    TweetService
	validator *validation.Validator
}

// NewTweetHandler creates a new TweetHandler instance.
func NewTweetHandler(tweets TweetService, validator *validation.Validator) *TweetHandler {
	return &TweetHandler{tweets: tweets, validator: validator}
}

// Create posts a tweet.
func (h *TweetHandler) Create(c *gin.Context) {
	var req contentRequest
	if !bind(c, h.validator, &req) {
		return
	}

	tweet, err := h.tweets.Create(c.Request.Context(), middleware.ViewerID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, tweet, "Tweet created successfully")
}

// ByUser lists a user's tweets.
func (h *TweetHandler) ByUser(c *gin.Context) {
	tweets, err := h.tweets.ByUser(c.Request.Context(), c.Param("username"), middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tweets, "Tweets fetched successfully")
}

// Update edits an owned tweet.
func (h *TweetHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "tweetId", "tweet")
	if !ok {
		return
	}
	var req contentRequest
	if !bind(c, h.validator, &req) {
		return
	}

	tweet, err := h.tweets.Update(c.Request.Context(), id, middleware.ViewerID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tweet, "Tweet updated successfully")
}

// Delete removes an owned tweet.
func (h *TweetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "tweetId", "tweet")
	if !ok {
		return
	}

	if err := h.tweets.Delete(c.Request.Context(), id, middleware.ViewerID(c)); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Tweet deleted successfully")
}
