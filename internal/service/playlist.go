package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgPlaylistNotFound = "Playlist not found"

// PlaylistStore is the playlist persistence used by PlaylistService.
type PlaylistStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	PlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistSummary, error)
	PlaylistDetail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error)
	AddVideoToPlaylist(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideoFromPlaylist(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
}

// PlaylistService manages user playlists.
type PlaylistService struct {
	playlists PlaylistStore
	validator *validation.Validator
}

// NewPlaylistService creates a new PlaylistService instance.
func NewPlaylistService(playlists PlaylistStore, validator *validation.Validator) *PlaylistService {
	return &PlaylistService{playlists: playlists, validator: validator}
}

// Create makes an empty playlist owned by the viewer.
func (s *PlaylistService) Create(ctx context.Context, viewer primitive.ObjectID, name, description string) (*models.Playlist, error) {
	name = s.validator.Sanitize(name)
	if name == "" {
		return nil, apierror.BadRequest("Name is required")
	}

	playlist := &models.Playlist{
		Name:        name,
		Description: s.validator.Sanitize(description),
		Owner:       viewer,
	}
	if err := s.playlists.CreatePlaylist(ctx, playlist); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	return playlist, nil
}

// ByUser lists the playlists of username.
func (s *PlaylistService) ByUser(ctx context.Context, username string) ([]models.PlaylistSummary, error) {
	user, err := s.playlists.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, notFoundAs(err, "User not found", "user playlists")
	}

	playlists, err := s.playlists.PlaylistsByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("user playlists: %w", err)
	}
	return playlists, nil
}

// Get returns the playlist page.
func (s *PlaylistService) Get(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	detail, err := s.playlists.PlaylistDetail(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, "get playlist")
	}
	return detail, nil
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, id, viewer primitive.ObjectID, op string) (*models.Playlist, error) {
	playlist, err := s.playlists.GetPlaylistByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, op)
	}
	if err := requireOwner(viewer, playlist.Owner); err != nil {
		return nil, err
	}
	return playlist, nil
}

// playlistAndVideo loads an owned playlist and checks that the video exists.
func (s *PlaylistService) playlistAndVideo(ctx context.Context, id, videoID, viewer primitive.ObjectID, op string) (*models.Playlist, error) {
	playlist, err := s.playlists.GetPlaylistByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, op)
	}
	if _, err := s.playlists.GetVideoByID(ctx, videoID); err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, op)
	}
	if err := requireOwner(viewer, playlist.Owner); err != nil {
		return nil, err
	}
	return playlist, nil
}

// AddVideo appends a video to an owned playlist.
func (s *PlaylistService) AddVideo(ctx context.Context, id, videoID, viewer primitive.ObjectID) (*models.Playlist, error) {
	playlist, err := s.playlistAndVideo(ctx, id, videoID, viewer, "add video to playlist")
	if err != nil {
		return nil, err
	}
	if playlist.Contains(videoID) {
		return nil, apierror.BadRequest("Video already in playlist")
	}

	updated, err := s.playlists.AddVideoToPlaylist(ctx, id, videoID)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, "add video to playlist")
	}
	return updated, nil
}

// RemoveVideo removes a video from an owned playlist.
func (s *PlaylistService) RemoveVideo(ctx context.Context, id, videoID, viewer primitive.ObjectID) (*models.Playlist, error) {
	playlist, err := s.playlistAndVideo(ctx, id, videoID, viewer, "remove video from playlist")
	if err != nil {
		return nil, err
	}
	if !playlist.Contains(videoID) {
		return nil, apierror.BadRequest("Video not in playlist")
	}

	updated, err := s.playlists.RemoveVideoFromPlaylist(ctx, id, videoID)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, "remove video from playlist")
	}
	return updated, nil
}

// Update renames an owned playlist. A blank description keeps the old one.
func (s *PlaylistService) Update(ctx context.Context, id, viewer primitive.ObjectID, name, description string) (*models.Playlist, error) {
	name = s.validator.Sanitize(name)
	if name == "" {
		return nil, apierror.BadRequest("Name is required")
	}
	playlist, err := s.ownedPlaylist(ctx, id, viewer, "update playlist")
	if err != nil {
		return nil, err
	}

	description = s.validator.Sanitize(description)
	if description == "" {
		description = playlist.Description
	}

	updated, err := s.playlists.UpdatePlaylist(ctx, id, name, description)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, "update playlist")
	}
	return updated, nil
}

// Delete removes an owned playlist.
func (s *PlaylistService) Delete(ctx context.Context, id, viewer primitive.ObjectID) (*models.Playlist, error) {
	if _, err := s.ownedPlaylist(ctx, id, viewer, "delete playlist"); err != nil {
		return nil, err
	}

	deleted, err := s.playlists.DeletePlaylist(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgPlaylistNotFound, "delete playlist")
	}
	return deleted, nil
}
