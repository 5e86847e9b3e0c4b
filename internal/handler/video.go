package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/videotube/videotube-api/internal/middleware"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/service"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoService is the video logic used by VideoHandler.
type VideoService interface {
	List(ctx context.Context, q models.VideoQuery) ([]models.VideoCard, error)
	Recommended(ctx context.Context, id primitive.ObjectID) ([]models.VideoCard, error)
	Publish(ctx context.Context, owner primitive.ObjectID, in service.PublishInput) (*models.Video, error)
	Get(ctx context.Context, id, viewer primitive.ObjectID, viewerKey string) (*models.VideoDetail, error)
	Update(ctx context.Context, id, viewer primitive.ObjectID, in service.UpdateInput) (*models.Video, error)
	Delete(ctx context.Context, id, viewer primitive.ObjectID) (*models.Video, error)
	TogglePublish(ctx context.Context, id, viewer primitive.ObjectID) (*models.Video, error)
}

// VideoHandler handles video endpoints.
type VideoHandler struct {
	videos  VideoService
	uploads Uploads
}

// NewVideoHandler creates a new VideoHandler instance.
func NewVideoHandler(videos VideoService, uploads Uploads) *VideoHandler {
	return &VideoHandler{videos: videos, uploads: uploads}
}

// List returns one page of published videos.
func (h *VideoHandler) List(c *gin.Context) {
	q := validation.ParseVideoQuery(
		c.Query("page"),
		c.Query("limit"),
		c.Query("query"),
		c.Query("sortBy"),
		c.Query("sortType"),
	)

	videos, err := h.videos.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Videos fetched successfully")
}

// Recommended returns videos related to the path video.
func (h *VideoHandler) Recommended(c *gin.Context) {
	id, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}

	videos, err := h.videos.Recommended(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Recommended videos fetched successfully")
}

// Publish uploads a new video.
func (h *VideoHandler) Publish(c *gin.Context) {
	files, err := h.uploads.SaveAll(c, "videoFile", "thumbnail")
	if err != nil {
		fail(c, err)
		return
	}
	defer removeAll(files)

	video, err := h.videos.Publish(c.Request.Context(), middleware.ViewerID(c), service.PublishInput{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		VideoPath:     files["videoFile"],
		ThumbnailPath: files["thumbnail"],
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video uploaded Successfully")
}

// Get returns the watch page and records the view.
func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}

	video, err := h.videos.Get(c.Request.Context(), id, middleware.ViewerID(c), c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video fetched successfully")
}

// Update changes an owned video.
func (h *VideoHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}

	thumbnail, err := h.uploads.Save(c, "thumbnail")
	if err != nil {
		fail(c, err)
		return
	}
	defer removeTemp(thumbnail)

	video, err := h.videos.Update(c.Request.Context(), id, middleware.ViewerID(c), service.UpdateInput{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		ThumbnailPath: thumbnail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video updated successfully")
}

// Delete removes an owned video.
func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}

	video, err := h.videos.Delete(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video deleted successfully")
}

// TogglePublish flips the publish flag of an owned video.
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	id, ok := pathID(c, "videoId", "video")
	if !ok {
		return
	}

	video, err := h.videos.TogglePublish(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Publish status toggled successfully")
}
