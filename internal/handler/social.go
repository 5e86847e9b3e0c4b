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

// CommentService is the comment logic used by CommentHandler.
type CommentService interface {
	List(ctx context.Context, videoID, viewer primitive.ObjectID, page models.Page) (*models.CommentPage, error)
	Add(ctx context.Context, videoID, viewer primitive.ObjectID, content string) (*models.Comment, error)
	Update(ctx context.Context, id, viewer primitive.ObjectID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id, viewer primitive.ObjectID) (*models.Comment, error)
}

type contentRequest struct {
	Content string `json:"content" form:"content"`
}

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	comments  CommentService
	validator *validation.Validator
}

// NewCommentHandler creates a new CommentHandler instance.
func NewCommentHandler(comments CommentService, validator *validation.Validator) *CommentHandler {
	return &CommentHandler{comments: comments, validator: validator}
}

// List returns one page of a video's comments.
func (h *CommentHandler) List(c *gin.Context) {
	videoID, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}

	page := validation.ParsePage(c.Query("page"), c.Query("limit"))
	comments, err := h.comments.List(c.Request.Context(), videoID, middleware.ViewerID(c), page)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comments, "Comments fetched successfully")
}

// Add comments on a video.
func (h *CommentHandler) Add(c *gin.Context) {
	videoID, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}
	var req contentRequest
	if !bind(c, h.validator, &req) {
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), videoID, middleware.ViewerID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment, "Comment added successfully")
}

// Update edits an owned comment.
func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "commentId", "comment")
	if !ok {
		return
	}
	var req contentRequest
	if !bind(c, h.validator, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), id, middleware.ViewerID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comment, "Comment updated")
}

// Delete removes an owned comment.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "commentId", "comment")
	if !ok {
		return
	}

	comment, err := h.comments.Delete(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comment, "Comment deleted")
}

// LikeService is the like logic used by LikeHandler.
type LikeService interface {
	Toggle(ctx context.Context, target models.LikeTarget, targetID, viewer primitive.ObjectID) (*models.LikeStatus, error)
	LikedVideos(ctx context.Context, viewer primitive.ObjectID) ([]models.VideoCard, error)
}

// LikeHandler handles like endpoints.
type LikeHandler struct {
	likes LikeService
}

// NewLikeHandler creates a new LikeHandler instance.
func NewLikeHandler(likes LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// Toggle returns a handler toggling likes on target, read from param.
func (h *LikeHandler) Toggle(target models.LikeTarget, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, param, string(target))
		if !ok {
			return
		}

		status, err := h.likes.Toggle(c.Request.Context(), target, id, middleware.ViewerID(c))
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, status, "Like Status Updated")
	}
}

// LikedVideos returns the viewer's liked videos.
func (h *LikeHandler) LikedVideos(c *gin.Context) {
	videos, err := h.likes.LikedVideos(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Liked videos fetched successfully")
}

// SubscriptionService is the subscription logic used by SubscriptionHandler.
type SubscriptionService interface {
	Toggle(ctx context.Context, channel, viewer primitive.ObjectID) (*models.SubscriptionStatus, error)
	Subscribers(ctx context.Context, channel primitive.ObjectID) (*models.ChannelSubscribers, error)
	SubscribedChannels(ctx context.Context, username string) ([]models.SubscribedChannel, error)
}

// SubscriptionHandler handles subscription endpoints.
type SubscriptionHandler struct {
	subscriptions SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler instance.
func NewSubscriptionHandler(subscriptions SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Toggle subscribes to or unsubscribes from a channel.
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	channel, ok := pathID(c, "channelId", "channel")
	if !ok {
		return
	}

	status, err := h.subscriptions.Toggle(c.Request.Context(), channel, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, status, "Subscription toggled")
}

// Subscribers lists a channel's subscribers.
func (h *SubscriptionHandler) Subscribers(c *gin.Context) {
	channel, ok := pathID(c, "channelId", "channel")
	if !ok {
		return
	}

	subs, err := h.subscriptions.Subscribers(c.Request.Context(), channel)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, subs, "Subscribers fetched")
}

// SubscribedChannels lists the channels a user subscribes to.
func (h *SubscriptionHandler) SubscribedChannels(c *gin.Context) {
	channels, err := h.subscriptions.SubscribedChannels(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, channels, "Channels fetched")
}
