package service

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgCommentNotFound = "Comment not found"

// CommentStore is the comment persistence used by CommentService.
type CommentStore interface {
	GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListComments(ctx context.Context, videoID, viewer primitive.ObjectID, page models.Page) (*models.CommentPage, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
}

// CommentService handles video comments.
type CommentService struct {
	comments  CommentStore
	validator *validation.Validator
}

// NewCommentService creates a new CommentService instance.
func NewCommentService(comments CommentStore, validator *validation.Validator) *CommentService {
	return &CommentService{comments: comments, validator: validator}
}

// List returns one page of a video's comments, newest first.
func (s *CommentService) List(ctx context.Context, videoID, viewer primitive.ObjectID, page models.Page) (*models.CommentPage, error) {
	comments, err := s.comments.ListComments(ctx, videoID, viewer, page)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Add comments on an existing video.
func (s *CommentService) Add(ctx context.Context, videoID, viewer primitive.ObjectID, content string) (*models.Comment, error) {
	content = s.validator.Sanitize(content)
	if content == "" {
		return nil, apierror.BadRequest("Comment cannot be empty")
	}

	if _, err := s.comments.GetVideoByID(ctx, videoID); err != nil {
		return nil, notFoundAs(err, msgVideoNotFound, "add comment")
	}

	comment := &models.Comment{Content: content, Video: videoID, Owner: viewer}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) ownedComment(ctx context.Context, id, viewer primitive.ObjectID, op string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgCommentNotFound, op)
	}
	if err := requireOwner(viewer, comment.Owner); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update replaces the content of an owned comment.
func (s *CommentService) Update(ctx context.Context, id, viewer primitive.ObjectID, content string) (*models.Comment, error) {
	content = s.validator.Sanitize(content)
	if content == "" {
		return nil, apierror.BadRequest("Comment cannot be empty")
	}
	if _, err := s.ownedComment(ctx, id, viewer, "update comment"); err != nil {
		return nil, err
	}

	comment, err := s.comments.UpdateComment(ctx, id, content)
	if err != nil {
		return nil, notFoundAs(err, msgCommentNotFound, "update comment")
	}
	return comment, nil
}

// Delete removes an owned comment and its likes.
func (s *CommentService) Delete(ctx context.Context, id, viewer primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.ownedComment(ctx, id, viewer, "delete comment")
	if err != nil {
		return nil, err
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return nil, notFoundAs(err, msgCommentNotFound, "delete comment")
	}
	return comment, nil
}
