package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/repository"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// AccessTokenCookie carries the access token.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie carries the refresh token.
	RefreshTokenCookie = "refreshToken"

	headerAuth   = "Authorization"
	bearerPrefix = "Bearer "
	userKey      = "user"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseAccessToken(token string) (primitive.ObjectID, error)
}

// UserLoader loads the user named by a token, without credentials.
type UserLoader interface {
	GetPublicUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// JWTAuth authenticates requests with the signed access token.
type JWTAuth struct {
	tokens TokenParser
	users  UserLoader
}

// NewJWTAuth creates the authentication middleware.
func NewJWTAuth(tokens TokenParser, users UserLoader) *JWTAuth {
	return &JWTAuth{tokens: tokens, users: users}
}

// RequireAuth rejects requests without a valid access token and stores the
// authenticated user in the context.
func (a *JWTAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, apierror.Unauthorized("Unauthorized request"))
			return
		}

		user, err := a.authenticate(c.Request.Context(), token)
		if err != nil {
			logger.L().Debug("Rejected access token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abort(c, apierror.Unauthorized("Invalid access token"))
			return
		}

		SetUser(c, user)
		c.Next()
	}
}

// OptionalAuth stores the user when a valid token is present and never rejects.
func (a *JWTAuth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if user, err := a.authenticate(c.Request.Context(), token); err == nil {
				SetUser(c, user)
			}
		}
		c.Next()
	}
}

func (a *JWTAuth) authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetPublicUserByID(ctx, id)
	if err != nil {
		if !repository.IsNotFound(err) {
			logger.L().Error("Failed to load token user", zap.Error(err))
		}
		return nil, err
	}
	return user, nil
}

// extractToken reads the access token cookie, then the Authorization header.
func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader(headerAuth)
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	}

	return ""
}

func abort(c *gin.Context, err *apierror.Error) {
	_ = c.Error(err)
	c.Abort()
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// ViewerID returns the authenticated user's id, or the zero id for anonymous requests.
func ViewerID(c *gin.Context) primitive.ObjectID {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return primitive.NilObjectID
}

// SetUser stores user as the authenticated user.
func SetUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}
