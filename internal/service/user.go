package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/events"
	"github.com/videotube/videotube-api/internal/media"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/repository"
	"github.com/videotube/videotube-api/internal/validation"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the user persistence used by UserService.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserForLogin(ctx context.Context, username, email string) (*models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string, exclude primitive.ObjectID) (bool, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoCard, error)
	VideosByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.VideoCard, error)
	DashboardStats(ctx context.Context, owner primitive.ObjectID) (*models.DashboardStats, error)
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	GenerateAccessToken(user *models.User) (string, error)
	GenerateRefreshToken(user *models.User) (string, error)
	ParseRefreshToken(token string) (primitive.ObjectID, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) (bool, error)
}

// UserService handles accounts, sessions and channel pages.
type UserService struct {
	users     UserStore
	media     media.Store
	tokens    TokenIssuer
	passwords PasswordHasher
	publisher events.Emitter
	validator *validation.Validator
}

// NewUserService creates a new UserService instance.
func NewUserService(users UserStore, store media.Store, tokens TokenIssuer, passwords PasswordHasher, publisher events.Emitter, validator *validation.Validator) *UserService {
	return &UserService{
		users:     users,
		media:     store,
		tokens:    tokens,
		passwords: passwords,
		publisher: publisher,
		validator: validator,
	}
}

// RegisterInput is a sign-up request. File paths point at saved temp uploads.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// Register creates an account and uploads its images.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	if in.FullName == "" || in.Email == "" || in.Username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apierror.BadRequest("All fields are required")
	}
	if !s.validator.IsValidEmail(in.Email) {
		return nil, apierror.BadRequest("Email is not valid")
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, in.Username, in.Email, primitive.NilObjectID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, apierror.Conflict("User with email or username already exists")
	}

	if in.AvatarPath == "" {
		return nil, apierror.BadRequest("Avatar is required")
	}
	avatar, err := s.media.Upload(ctx, in.AvatarPath, media.KindImage)
	if err != nil {
		logger.L().Warn("Avatar upload failed", zap.Error(err))
		return nil, apierror.BadRequest("Error while uploading avatar")
	}

	user := &models.User{
		FullName: in.FullName,
		Email:    in.Email,
		Username: in.Username,
		Avatar:   toAsset(avatar),
	}

	if in.CoverPath != "" {
		cover, err := s.media.Upload(ctx, in.CoverPath, media.KindImage)
		if err != nil {
			logger.L().Warn("Cover image upload failed, registering without it", zap.Error(err))
		} else {
			asset := toAsset(cover)
			user.CoverImage = &asset
		}
	}

	user.Password, err = s.passwords.Hash(in.Password)
	if err == nil {
		err = s.users.CreateUser(ctx, user)
	}
	if err != nil {
		discardAsset(ctx, s.media, user.Avatar.PublicID)
		if user.CoverImage != nil {
			discardAsset(ctx, s.media, user.CoverImage.PublicID)
		}
		if repository.IsDuplicateKey(err) {
			return nil, apierror.Conflict("User with email or username already exists")
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	logger.L().Info("User registered",
		zap.String("userId", user.ID.Hex()),
		zap.String("username", user.Username),
	)
	events.PublishAsync(s.publisher, events.UserRegistered, map[string]string{
		"userId":   user.ID.Hex(),
		"username": user.Username,
		"email":    user.Email,
	})

	return user.Public(), nil
}

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Login checks the credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return nil, apierror.BadRequest("Username or Email is required")
	}

	user, err := s.users.FindUserForLogin(ctx, username, email)
	if err != nil {
		return nil, notFoundAs(err, "User does not exist", "login")
	}

	ok, err := s.passwords.Matches(user.Password, in.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, apierror.Unauthorized("Password is incorrect")
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResult{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *UserService) issueTokens(ctx context.Context, user *models.User) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("issue tokens: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return "", "", fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return "", "", fmt.Errorf("issue tokens: %w", err)
	}
	return access, refresh, nil
}

// Logout forgets the stored refresh token.
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil && !repository.IsNotFound(err) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RefreshAccessToken issues a new access token for a valid, current refresh token.
func (s *UserService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apierror.Unauthorized("Unauthorized request")
	}

	id, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", apierror.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", apierror.Unauthorized("Invalid refresh token")
		}
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if user.RefreshToken != refreshToken {
		return "", apierror.Unauthorized("Refresh token is expired")
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return access, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, "User not found", "change password")
	}

	ok, err := s.passwords.Matches(user.Password, oldPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return apierror.BadRequest("Invalid old password")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// UpdateAccountInput holds optional profile changes.
type UpdateAccountInput struct {
	FullName   string
	Email      string
	Username   string
	AvatarPath string
	CoverPath  string
}

// UpdateAccount applies profile changes. Replaced images are deleted from the
// media host after the document is updated.
func (s *UserService) UpdateAccount(ctx context.Context, user *models.User, in UpdateAccountInput) (*models.User, error) {
	var upd models.UserUpdate

	if name := strings.TrimSpace(in.FullName); name != "" {
		upd.FullName = &name
	}
	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != user.Email {
		if !s.validator.IsValidEmail(email) {
			return nil, apierror.BadRequest("Email is not valid")
		}
		upd.Email = &email
	}
	if username := strings.ToLower(strings.TrimSpace(in.Username)); username != "" && username != user.Username {
		upd.Username = &username
	}

	if upd.IsEmpty() && in.AvatarPath == "" && in.CoverPath == "" {
		return nil, apierror.BadRequest("At least one field is required")
	}

	if upd.Email != nil || upd.Username != nil {
		var username, email string
		if upd.Username != nil {
			username = *upd.Username
		}
		if upd.Email != nil {
			email = *upd.Email
		}
		taken, err := s.users.UsernameOrEmailTaken(ctx, username, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("update account: %w", err)
		}
		if taken {
			return nil, apierror.Conflict("User with email or username already exists")
		}
	}

	if in.AvatarPath != "" {
		avatar, err := s.media.Upload(ctx, in.AvatarPath, media.KindImage)
		if err != nil {
			logger.L().Warn("Avatar upload failed", zap.Error(err))
			return nil, apierror.BadRequest("Error while updating avatar")
		}
		asset := toAsset(avatar)
		upd.Avatar = &asset
	}
	if in.CoverPath != "" {
		cover, err := s.media.Upload(ctx, in.CoverPath, media.KindImage)
		if err != nil {
			logger.L().Warn("Cover image upload failed", zap.Error(err))
			if upd.Avatar != nil {
				discardAsset(ctx, s.media, upd.Avatar.PublicID)
			}
			return nil, apierror.BadRequest("Error while updating cover image")
		}
		asset := toAsset(cover)
		upd.CoverImage = &asset
	}

	updated, err := s.users.UpdateUser(ctx, user.ID, upd)
	if err != nil {
		if upd.Avatar != nil {
			discardAsset(ctx, s.media, upd.Avatar.PublicID)
		}
		if upd.CoverImage != nil {
			discardAsset(ctx, s.media, upd.CoverImage.PublicID)
		}
		if repository.IsDuplicateKey(err) {
			return nil, apierror.Conflict("User with email or username already exists")
		}
		return nil, notFoundAs(err, "User not found", "update account")
	}

	if upd.Avatar != nil && user.Avatar.PublicID != "" {
		if err := s.media.Delete(ctx, user.Avatar.PublicID); err != nil {
			logger.L().Error("Failed to delete old avatar", zap.Error(err))
			return nil, apierror.BadRequest("Error while deleting old avatar")
		}
	}
	if upd.CoverImage != nil && user.CoverImage != nil && user.CoverImage.PublicID != "" {
		if err := s.media.Delete(ctx, user.CoverImage.PublicID); err != nil {
			logger.L().Error("Failed to delete old cover image", zap.Error(err))
			return nil, apierror.BadRequest("Error while deleting old cover image")
		}
	}

	return updated.Public(), nil
}

// ChannelProfile returns the channel page of username as seen by viewer.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apierror.NotFound("Username not found")
	}

	profile, err := s.users.ChannelProfile(ctx, username, viewer)
	if err != nil {
		return nil, notFoundAs(err, "Channel does not exist", "channel profile")
	}
	return profile, nil
}

// WatchHistory returns the videos the user watched.
func (s *UserService) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoCard, error) {
	videos, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	return videos, nil
}

// ChannelVideos returns every video uploaded by username.
func (s *UserService) ChannelVideos(ctx context.Context, username string) ([]models.VideoCard, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, "User not found", "channel videos")
	}

	videos, err := s.users.VideosByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("channel videos: %w", err)
	}
	return videos, nil
}

// Dashboard returns the channel statistics of username. Only the channel
// owner may read them.
func (s *UserService) Dashboard(ctx context.Context, viewer primitive.ObjectID, username string) (*models.DashboardStats, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, "User not found", "dashboard")
	}
	if user.ID != viewer {
		return nil, apierror.Unauthorized("You are not an admin")
	}

	stats, err := s.users.DashboardStats(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return stats, nil
}
