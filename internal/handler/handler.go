// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, models.NewResponse(status, data, message))
}

// fail hands err to the error middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// pathID parses an object id path parameter. On failure it records a 400 and
// returns false.
func pathID(c *gin.Context, param, what string) (primitive.ObjectID, bool) {
	id, ok := validation.ParseObjectID(c.Param(param))
	if !ok {
		fail(c, apierror.BadRequest(fmt.Sprintf("Invalid %s id", what)))
	}
	return id, ok
}

// bind decodes the body into req and runs struct validation.
func bind(c *gin.Context, v *validation.Validator, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		logger.L().Debug("Invalid request payload",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		fail(c, apierror.BadRequest("Invalid request payload"))
		return false
	}

	if err := v.Struct(req); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			fail(c, apierror.BadRequest("Validation failed", verrs.Messages()...))
			return false
		}
		fail(c, err)
		return false
	}
	return true
}

// Uploads saves multipart files to a temp directory for the media store.
type Uploads struct {
	Dir     string
	MaxSize int64
}

// Save stores the file of field and returns its path, or "" when the request
// carries no such file.
func (u Uploads) Save(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", apierror.BadRequest("Invalid multipart form")
	}
	if u.MaxSize > 0 && file.Size > u.MaxSize {
		return "", apierror.BadRequest(fmt.Sprintf("%s is too large", field))
	}

	dst := filepath.Join(u.Dir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("save upload %s: %w", field, err)
	}
	return dst, nil
}

// SaveAll stores every listed field. Paths saved before a failure are removed.
func (u Uploads) SaveAll(c *gin.Context, fields ...string) (map[string]string, error) {
	paths := make(map[string]string, len(fields))
	for _, field := range fields {
		path, err := u.Save(c, field)
		if err != nil {
			for _, p := range paths {
				removeTemp(p)
			}
			return nil, err
		}
		paths[field] = path
	}
	return paths, nil
}

// removeTemp deletes a temp upload the media store did not consume.
func removeTemp(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.L().Warn("Failed to remove temp upload", zap.String("path", p), zap.Error(err))
		}
	}
}

func removeAll(paths map[string]string) {
	for _, p := range paths {
		removeTemp(p)
	}
}
