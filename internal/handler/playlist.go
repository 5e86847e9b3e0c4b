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

// PlaylistService is the playlist logic used by PlaylistHandler.
type PlaylistService interface {
	Create(ctx context.Context, viewer primitive.ObjectID, name, description string) (*models.Playlist, error)
	ByUser(ctx context.Context, username string) ([]models.PlaylistSummary, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error)
	AddVideo(ctx context.Context, id, videoID, viewer primitive.ObjectID) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID, viewer primitive.ObjectID) (*models.Playlist, error)
	Update(ctx context.Context, id, viewer primitive.ObjectID, name, description string) (*models.Playlist, error)
	Delete(ctx context.Context, id, viewer primitive.ObjectID) (*models.Playlist, error)
}

type playlistRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// PlaylistHandler handles playlist endpoints.
type PlaylistHandler struct {
	playlists PlaylistService
	validator *validation.Validator
}

// NewPlaylistHandler creates a new PlaylistHandler instance.
func NewPlaylistHandler(playlists PlaylistService, validator *validation.Validator) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, validator: validator}
}

// Create makes a playlist owned by the viewer.
func (h *PlaylistHandler) Create(c *gin.Context) {
	var req playlistRequest
	if !bind(c, h.validator, &req) {
		return
	}

	playlist, err := h.playlists.Create(c.Request.Context(), middleware.ViewerID(c), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, playlist, "Playlist created successfully")
}

// ByUser lists a user's playlists.
func (h *PlaylistHandler) ByUser(c *gin.Context) {
	playlists, err := h.playlists.ByUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlists, "Playlists fetched successfully")
}

// Get returns a playlist page.
func (h *PlaylistHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "playlistId", "playlist")
	if !ok {
		return
	}

	playlist, err := h.playlists.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist fetched successfully")
}

func videoAndPlaylistIDs(c *gin.Context) (videoID, playlistID primitive.ObjectID, ok bool) {
	if videoID, ok = pathID(c, "videoId", "video"); !ok {
		return
	}
	playlistID, ok = pathID(c, "playlistId", "playlist")
	return
}

// AddVideo appends a video to an owned playlist.
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	videoID, playlistID, ok := videoAndPlaylistIDs(c)
	if !ok {
		return
	}

	playlist, err := h.playlists.AddVideo(c.Request.Context(), playlistID, videoID, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Video added to playlist")
}

// RemoveVideo removes a video from an owned playlist.
func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	videoID, playlistID, ok := videoAndPlaylistIDs(c)
	if !ok {
		return
	}

	playlist, err := h.playlists.RemoveVideo(c.Request.Context(), playlistID, videoID, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Video removed from playlist")
}

// Update renames an owned playlist.
func (h *PlaylistHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "playlistId", "playlist")
	if !ok {
		return
	}
	var req playlistRequest
	if !bind(c, h.validator, &req) {
		return
	}

	playlist, err := h.playlists.Update(c.Request.Context(), id, middleware.ViewerID(c), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist updated successfully")
}

// Delete removes an owned playlist.
func (h *PlaylistHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "playlistId", "playlist")
	if !ok {
		return
	}

	playlist, err := h.playlists.Delete(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist deleted successfully")
}
