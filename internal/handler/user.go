package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/middleware"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/service"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService is the account logic used by UserHandler.
type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in service.LoginInput) (*models.AuthResult, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, user *models.User, in service.UpdateAccountInput) (*models.User, error)
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoCard, error)
	ChannelVideos(ctx context.Context, username string) ([]models.VideoCard, error)
	Dashboard(ctx context.Context, viewer primitive.ObjectID, username string) (*models.DashboardStats, error)
}

// CookieConfig controls the auth cookies.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// UserHandler handles account, session and channel endpoints.
type UserHandler struct {
	users     UserService
	uploads   Uploads
	cookies   CookieConfig
	validator *validation.Validator
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(users UserService, uploads Uploads, cookies CookieConfig, validator *validation.Validator) *UserHandler {
	return &UserHandler{
		users:     users,
		uploads:   uploads,
		cookies:   cookies,
		validator: validator,
	}
}

func (h *UserHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *UserHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(name, "", -1, "/", "", h.cookies.Secure, true)
}

// Register creates an account from a multipart form.
func (h *UserHandler) Register(c *gin.Context) {
	files, err := h.uploads.SaveAll(c, "avatar", "coverImage")
	if err != nil {
		fail(c, err)
		return
	}
	defer removeAll(files)

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		FullName:   c.PostForm("fullName"),
		Email:      c.PostForm("email"),
		Username:   c.PostForm("username"),
		Password:   c.PostForm("password"),
		AvatarPath: files["avatar"],
		CoverPath:  files["coverImage"],
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, user, "User registered successfully")
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Login issues the token pair and sets both cookies.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, h.validator, &req) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	h.setCookie(c, middleware.AccessTokenCookie, res.AccessToken, h.cookies.AccessTTL)
	h.setCookie(c, middleware.RefreshTokenCookie, res.RefreshToken, h.cookies.RefreshTTL)
	respond(c, http.StatusOK, res, "User Logged in Successfully")
}

// Logout forgets the refresh token and clears both cookies.
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), middleware.ViewerID(c)); err != nil {
		fail(c, err)
		return
	}

	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, middleware.RefreshTokenCookie)
	respond(c, http.StatusOK, gin.H{}, "User logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

// RefreshToken issues a new access token from the refresh cookie or body.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req refreshRequest
		_ = c.ShouldBind(&req)
		token = req.RefreshToken
	}

	access, err := h.users.RefreshAccessToken(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}

	h.setCookie(c, middleware.AccessTokenCookie, access, h.cookies.AccessTTL)
	respond(c, http.StatusOK, gin.H{"accessToken": access}, "Access Token refreshed successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"required,min=6"`
}

// ChangePassword replaces the viewer's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, h.validator, &req) {
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), middleware.ViewerID(c), req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

// CurrentUser returns the authenticated user.
func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, apierror.Unauthorized("Unauthorized request"))
		return
	}
	respond(c, http.StatusOK, user.Public(), "User fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
}

// UpdateAccount changes profile fields and images.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, apierror.Unauthorized("Unauthorized request"))
		return
	}

	files, err := h.uploads.SaveAll(c, "avatar", "coverImage")
	if err != nil {
		fail(c, err)
		return
	}
	defer removeAll(files)

	var req updateAccountRequest
	if !bind(c, h.validator, &req) {
		return
	}

	updated, err := h.users.UpdateAccount(c.Request.Context(), user, service.UpdateAccountInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Username:   req.Username,
		AvatarPath: files["avatar"],
		CoverPath:  files["coverImage"],
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, updated, "Account details updated successfully")
}

// ChannelProfile returns a channel page.
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	profile, err := h.users.ChannelProfile(c.Request.Context(), c.Param("username"), middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile, "User channel fetched successfully")
}

// WatchHistory returns the viewer's watched videos.
func (h *UserHandler) WatchHistory(c *gin.Context) {
	videos, err := h.users.WatchHistory(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Watch history fetched successfully")
}

// ChannelVideos returns every video of a channel.
func (h *UserHandler) ChannelVideos(c *gin.Context) {
	videos, err := h.users.ChannelVideos(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Videos fetched successfully")
}

// Dashboard returns the viewer's channel statistics.
func (h *UserHandler) Dashboard(c *gin.Context) {
	stats, err := h.users.Dashboard(c.Request.Context(), middleware.ViewerID(c), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "Dashboard data fetched successfully")
}
