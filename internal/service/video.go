package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/cache"
	"github.com/videotube/videotube-api/internal/events"
	"github.com/videotube/videotube-api/internal/media"
	"github.com/videotube/videotube-api/internal/metrics"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	recommendedLimit       = 10
	descriptionKeywordsMax = 10
	msgVideoNotFound       = "Video not found"
)

// VideoStore is the video persistence used by VideoService.
type VideoStore interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	ListVideos(ctx context.Context, q models.VideoQuery) ([]models.VideoCard, error)
	RecommendedVideos(ctx context.Context, source primitive.ObjectID, keywords []string, limit int64) ([]models.VideoCard, error)
	VideoDetail(ctx context.Context, id, viewer primitive.ObjectID) (*models.VideoDetail, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
	UpdateVideo(ctx context.Context, id primitive.ObjectID, upd models.VideoUpdate) (*models.Video, error)
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error)
	DeleteVideo(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
}

// VideoService handles uploads, listings and the watch page.
type VideoService struct {
	videos    VideoStore
	media     media.Store
	views     cache.ViewTracker
	publisher events.Emitter
	validator *validation.Validator
}

// NewVideoService creates a new VideoService instance.
func NewVideoService(videos VideoStore, store media.Store, views cache.ViewTracker, publisher events.Emitter, validator *validation.Validator) *VideoService {
	return &VideoService{
		videos:    videos,
		media:     store,
		views:     views,
		publisher: publisher,
		validator: validator,
	}
}

// List returns one page of published videos.
func (s *VideoService) List(ctx context.Context, q models.VideoQuery) ([]models.VideoCard, error) {
	videos, err := s.videos.ListVideos(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// recommendationKeywords takes every title word and the first description words.
func recommendationKeywords(title, description string) []string {
	keywords := strings.Fields(title)
	desc := strings.Fields(description)
	if len(desc) > descriptionKeywordsMax {
		desc = desc[:descriptionKeywordsMax]
	}
	return append(keywords, desc...)
}

// Recommended returns published videos sharing a keyword with the source video.
func (s *VideoService) Recommended(ctx context.Context, id primitive.ObjectID) ([]models.VideoCard, error) {
	video, err := s.videos.GetVideoByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, "recommended videos")
	}

	keywords := recommendationKeywords(video.Title, video.Description)
	videos, err := s.videos.RecommendedVideos(ctx, video.ID, keywords, recommendedLimit)
	if err != nil {
		return nil, fmt.Errorf("recommended videos: %w", err)
	}
	return videos, nil
}

// PublishInput is an upload request. File paths point at saved temp uploads.
type PublishInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// Publish uploads the video and its thumbnail and creates a published video.
func (s *VideoService) Publish(ctx context.Context, owner primitive.ObjectID, in PublishInput) (*models.Video, error) {
	title := s.validator.Sanitize(in.Title)
	if title == "" {
		return nil, apierror.BadRequest("All fields are required")
	}
	if in.VideoPath == "" {
		return nil, apierror.BadRequest("Video File is required")
	}
	if in.ThumbnailPath == "" {
		return nil, apierror.BadRequest("Thumbnail is required")
	}

	file, err := s.media.Upload(ctx, in.VideoPath, media.KindVideo)
	if err != nil {
		logger.L().Error("Video upload failed", zap.Error(err))
		return nil, apierror.Internal("Error while uploading video")
	}
	thumbnail, err := s.media.Upload(ctx, in.ThumbnailPath, media.KindImage)
	if err != nil {
		discardAsset(ctx, s.media, file.PublicID)
		logger.L().Error("Thumbnail upload failed", zap.Error(err))
		return nil, apierror.Internal("Error while uploading thumbnail")
	}

	video := &models.Video{
		VideoFile:   toAsset(file),
		Thumbnail:   toAsset(thumbnail),
		Title:       title,
		Description: s.validator.Sanitize(in.Description),
		Duration:    file.Duration,
		IsPublished: true,
		Owner:       owner,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		discardAsset(ctx, s.media, file.PublicID)
		discardAsset(ctx, s.media, thumbnail.PublicID)
		return nil, fmt.Errorf("publish video: %w", err)
	}

	logger.L().Info("Video published",
		zap.String("videoId", video.ID.Hex()),
		zap.String("owner", owner.Hex()),
		zap.Float64("duration", video.Duration),
	)
	events.PublishAsync(s.publisher, events.VideoPublished, map[string]interface{}{
		"videoId":  video.ID.Hex(),
		"owner":    owner.Hex(),
		"title":    video.Title,
		"duration": video.Duration,
	})

	return video, nil
}

// Get returns the watch page of a video and records the view. viewerKey
// identifies anonymous viewers for view de-duplication.
func (s *VideoService) Get(ctx context.Context, id, viewer primitive.ObjectID, viewerKey string) (*models.VideoDetail, error) {
	detail, err := s.videos.VideoDetail(ctx, id, viewer)
	if err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, "get video")
	}

	if !viewer.IsZero() {
		viewerKey = viewer.Hex()
	}
	first, err := s.views.FirstView(ctx, id.Hex(), viewerKey)
	if err != nil {
		logger.L().Warn("View tracker unavailable, counting view", zap.Error(err))
		first = true
	}
	if first {
		if err := s.videos.IncrementViews(ctx, id); err != nil {
			return nil, fmt.Errorf("get video: %w", err)
		}
		detail.Views++
		metrics.VideoViews.Inc()
	}

	if !viewer.IsZero() {
		if err := s.videos.AddToWatchHistory(ctx, viewer, id); err != nil {
			return nil, fmt.Errorf("get video: %w", err)
		}
	}

	return detail, nil
}

// ownedVideo loads the video and checks that viewer owns it.
func (s *VideoService) ownedVideo(ctx context.Context, id, viewer primitive.ObjectID, op string) (*models.Video, error) {
	video, err := s.videos.GetVideoByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, op)
	}
	if err := requireOwner(viewer, video.Owner); err != nil {
		return nil, err
	}
	return video, nil
}

// UpdateInput holds video changes; blank fields keep the stored values.
type UpdateInput struct {
	Title         string
	Description   string
	ThumbnailPath string
}

// Update changes the title, description and thumbnail of an owned video.
func (s *VideoService) Update(ctx context.Context, id, viewer primitive.ObjectID, in UpdateInput) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, id, viewer, "update video")
	if err != nil {
		return nil, err
	}

	upd := models.VideoUpdate{
		Title:       video.Title,
		Description: video.Description,
		Thumbnail:   video.Thumbnail,
	}
	if title := s.validator.Sanitize(in.Title); title != "" {
		upd.Title = title
	}
	if description := s.validator.Sanitize(in.Description); description != "" {
		upd.Description = description
	}
	if in.ThumbnailPath != "" {
		thumbnail, err := s.media.Upload(ctx, in.ThumbnailPath, media.KindImage)
		if err != nil {
			logger.L().Error("Thumbnail upload failed", zap.Error(err))
			return nil, apierror.Internal("Error while uploading thumbnail")
		}
		upd.Thumbnail = toAsset(thumbnail)
	}

	updated, err := s.videos.UpdateVideo(ctx, id, upd)
	if err != nil {
		if in.ThumbnailPath != "" {
			discardAsset(ctx, s.media, upd.Thumbnail.PublicID)
		}
		return nil, notFoundAs(err, msgVideoNotFound, "update video")
	}

	if in.ThumbnailPath != "" && video.Thumbnail.PublicID != "" {
		if err := s.media.Delete(ctx, video.Thumbnail.PublicID); err != nil {
			logger.L().Error("Failed to delete old thumbnail",
				zap.String("videoId", id.Hex()),
				zap.Error(err),
			)
			return nil, apierror.Internal("Error while deleting old thumbnail")
		}
	}

	return updated, nil
}

// Delete removes an owned video with its comments, likes and media files.
func (s *VideoService) Delete(ctx context.Context, id, viewer primitive.ObjectID) (*models.Video, error) {
	if _, err := s.ownedVideo(ctx, id, viewer, "delete video"); err != nil {
		return nil, err
	}

	deleted, err := s.videos.DeleteVideo(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, "delete video")
	}

	for _, publicID := range []string{deleted.VideoFile.PublicID, deleted.Thumbnail.PublicID} {
		if publicID == "" {
			continue
		}
		if err := s.media.Delete(ctx, publicID); err != nil {
			logger.L().Error("Failed to delete video media",
				zap.String("videoId", id.Hex()),
				zap.String("publicId", publicID),
				zap.Error(err),
			)
			return nil, apierror.Internal("Error while deleting video files")
		}
	}

	logger.L().Info("Video deleted", zap.String("videoId", id.Hex()))
	events.PublishAsync(s.publisher, events.VideoDeleted, map[string]string{
		"videoId": id.Hex(),
		"owner":   deleted.Owner.Hex(),
	})

	return deleted, nil
}

// TogglePublish flips the publish flag of an owned video.
func (s *VideoService) TogglePublish(ctx context.Context, id, viewer primitive.ObjectID) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, id, viewer, "toggle publish")
	if err != nil {
		return nil, err
	}

	updated, err := s.videos.SetPublished(ctx, id, !video.IsPublished)
	if err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, "toggle publish")
	}
	return updated, nil
}
