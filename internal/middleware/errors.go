package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached to the context as the error
// envelope, unless a response was already written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		apiErr := apierror.From(err)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			logger.L().Error("Request failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.JSON(apiErr.StatusCode, apiErr.Body())
	}
}

// NotFound renders unknown routes as the error envelope.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, apierror.NotFound("Route not found").Body())
}
