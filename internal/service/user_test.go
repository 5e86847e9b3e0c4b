package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/videotube-api/internal/events"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userFixture struct {
	store   *memStore
	media   *fakeMedia
	emitter *fakeEmitter
	svc     *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		store:   newMemStore(),
		media:   newFakeMedia(),
		emitter: &fakeEmitter{},
	}
	f.svc = NewUserService(f.store, f.media, testTokens(), testHasher(), f.emitter, validation.New())
	return f
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FullName:   "Alice Doe",
		Email:      "Alice@Example.com",
		Username:   "Alice",
		Password:   "secret123",
		AvatarPath: "avatar.png",
	}
}

func TestUserService_Register(t *testing.T) {
	f := newUserFixture()

	user, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.Password)
	assert.Equal(t, "image/avatar.png", user.Avatar.PublicID)
	assert.Nil(t, user.CoverImage)

	stored := f.store.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password)
	ok, err := testHasher().Matches(stored.Password, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Eventually(t, f.emitter.published(events.UserRegistered), time.Second, 10*time.Millisecond)
}

func TestUserService_RegisterAcceptsAnyUsername(t *testing.T) {
	for _, username := range []string{"al", "Jean Luc", "zoë"} {
		f := newUserFixture()
		in := validRegistration()
		in.Username = username

		user, err := f.svc.Register(context.Background(), in)
		require.NoError(t, err, username)
		assert.Equal(t, strings.ToLower(username), user.Username)
	}
}

func TestUserService_RegisterWithCoverImage(t *testing.T) {
	f := newUserFixture()
	in := validRegistration()
	in.CoverPath = "cover.png"

	user, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, user.CoverImage)
	assert.Equal(t, "image/cover.png", user.CoverImage.PublicID)
}

func TestUserService_RegisterIgnoresCoverUploadFailure(t *testing.T) {
	f := newUserFixture()
	f.media.failUpload["cover.png"] = true
	in := validRegistration()
	in.CoverPath = "cover.png"

	user, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, user.CoverImage)
}

func TestUserService_RegisterRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		setup   func(*userFixture)
		status  int
		message string
	}{
		{
			name:    "blank field",
			mutate:  func(in *RegisterInput) { in.FullName = "   " },
			status:  http.StatusBadRequest,
			message: "All fields are required",
		},
		{
			name:    "bad email",
			mutate:  func(in *RegisterInput) { in.Email = "not-an-email" },
			status:  http.StatusBadRequest,
			message: "Email is not valid",
		},
		{
			name:    "missing avatar",
			mutate:  func(in *RegisterInput) { in.AvatarPath = "" },
			status:  http.StatusBadRequest,
			message: "Avatar is required",
		},
		{
			name:    "taken username",
			setup:   func(f *userFixture) { f.store.addUser("alice") },
			status:  http.StatusConflict,
			message: "User with email or username already exists",
		},
		{
			name:    "avatar upload fails",
			setup:   func(f *userFixture) { f.media.failUpload["avatar.png"] = true },
			status:  http.StatusBadRequest,
			message: "Error while uploading avatar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			in := validRegistration()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			_, err := f.svc.Register(context.Background(), in)
			assertAPIError(t, err, tt.status, tt.message)
		})
	}
}

func TestUserService_RegisterStoreFailureDiscardsUploads(t *testing.T) {
	f := newUserFixture()
	f.store.createErr = errStoreDown

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, []string{"image/avatar.png"}, f.media.deleted)
}

func registeredUser(t *testing.T, f *userFixture) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	return user
}

func TestUserService_Login(t *testing.T) {
	f := newUserFixture()
	user := registeredUser(t, f)

	res, err := f.svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, user.ID, res.User.ID)
	assert.Empty(t, res.User.Password)
	assert.Empty(t, res.User.RefreshToken)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, res.RefreshToken, f.store.users[user.ID].RefreshToken)

	id, err := testTokens().ParseRefreshToken(res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestUserService_LoginRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      LoginInput
		status  int
		message string
	}{
		{"no identifier", LoginInput{Password: "secret123"}, http.StatusBadRequest, "Username or Email is required"},
		{"unknown user", LoginInput{Username: "bob", Password: "secret123"}, http.StatusNotFound, "User does not exist"},
		{"wrong password", LoginInput{Username: "alice", Password: "nope"}, http.StatusUnauthorized, "Password is incorrect"},
	}

	f := newUserFixture()
	registeredUser(t, f)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.in)
			assertAPIError(t, err, tt.status, tt.message)
		})
	}
}

func TestUserService_Logout(t *testing.T) {
	f := newUserFixture()
	user := registeredUser(t, f)
	_, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), user.ID))
	assert.Empty(t, f.store.users[user.ID].RefreshToken)
}

func TestUserService_RefreshAccessToken(t *testing.T) {
	f := newUserFixture()
	user := registeredUser(t, f)
	res, err := f.svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	access, err := f.svc.RefreshAccessToken(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	id, err := testTokens().ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestUserService_RefreshAccessTokenRejects(t *testing.T) {
	f := newUserFixture()
	user := registeredUser(t, f)
	stale, err := testTokens().GenerateRefreshToken(user)
	require.NoError(t, err)
	ghost, err := testTokens().GenerateRefreshToken(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"missing", "", "Unauthorized request"},
		{"garbage", "not.a.token", "Invalid refresh token"},
		{"unknown user", ghost, "Invalid refresh token"},
		{"not the stored token", stale, "Refresh token is expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RefreshAccessToken(context.Background(), tt.token)
			assertAPIError(t, err, http.StatusUnauthorized, tt.message)
		})
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newUserFixture()
	user := registeredUser(t, f)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, user.ID, "wrong", "newsecret")
	assertAPIError(t, err, http.StatusBadRequest, "Invalid old password")

	require.NoError(t, f.svc.ChangePassword(ctx, user.ID, "secret123", "newsecret"))

	_, err = f.svc.Login(ctx, LoginInput{Username: "alice", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestUserService_UpdateAccountReplacesAvatar(t *testing.T) {
	f := newUserFixture()
	user := registeredUser(t, f)

	updated, err := f.svc.UpdateAccount(context.Background(), user, UpdateAccountInput{
		FullName:   "Alice D.",
		AvatarPath: "new.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice D.", updated.FullName)
	assert.Equal(t, "image/new.png", updated.Avatar.PublicID)
	assert.Equal(t, []string{"image/avatar.png"}, f.media.deleted)
}

func TestUserService_UpdateAccountRejects(t *testing.T) {
	t.Run("nothing to update", func(t *testing.T) {
		f := newUserFixture()
		user := registeredUser(t, f)
		_, err := f.svc.UpdateAccount(context.Background(), user, UpdateAccountInput{})
		assertAPIError(t, err, http.StatusBadRequest, "At least one field is required")
	})

	t.Run("username taken", func(t *testing.T) {
		f := newUserFixture()
		user := registeredUser(t, f)
		f.store.addUser("bob")
		_, err := f.svc.UpdateAccount(context.Background(), user, UpdateAccountInput{Username: "Bob"})
		assertAPIError(t, err, http.StatusConflict, "User with email or username already exists")
	})

	t.Run("old avatar cannot be deleted", func(t *testing.T) {
		f := newUserFixture()
		user := registeredUser(t, f)
		f.media.deleteErr = errStoreDown
		_, err := f.svc.UpdateAccount(context.Background(), user, UpdateAccountInput{AvatarPath: "new.png"})
		assertAPIError(t, err, http.StatusBadRequest, "Error while deleting old avatar")
	})
}

func TestUserService_ChannelProfile(t *testing.T) {
	f := newUserFixture()
	alice := f.store.addUser("alice")
	bob := f.store.addUser("bob")
	_, err := f.store.CreateSubscription(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)

	profile, err := f.svc.ChannelProfile(context.Background(), "Alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	_, err = f.svc.ChannelProfile(context.Background(), " ", bob.ID)
	assertAPIError(t, err, http.StatusNotFound, "Username not found")

	_, err = f.svc.ChannelProfile(context.Background(), "carol", bob.ID)
	assertAPIError(t, err, http.StatusNotFound, "Channel does not exist")
}

func TestUserService_ChannelVideos(t *testing.T) {
	f := newUserFixture()
	alice := f.store.addUser("alice")
	f.store.addVideo(alice.ID, "intro")

	videos, err := f.svc.ChannelVideos(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, videos, 1)

	_, err = f.svc.ChannelVideos(context.Background(), "nobody")
	assertAPIError(t, err, http.StatusNotFound, "User not found")
}

func TestUserService_Dashboard(t *testing.T) {
	f := newUserFixture()
	alice := f.store.addUser("alice")
	bob := f.store.addUser("bob")
	video := f.store.addVideo(alice.ID, "intro")
	video.Views = 7
	_, _ = f.store.CreateLike(context.Background(), models.LikeTargetVideo, video.ID, bob.ID)
	_, _ = f.store.CreateSubscription(context.Background(), bob.ID, alice.ID)

	stats, err := f.svc.Dashboard(context.Background(), alice.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{TotalViews: 7, TotalSubscribers: 1, TotalVideos: 1, TotalLikes: 1}, *stats)

	_, err = f.svc.Dashboard(context.Background(), bob.ID, "alice")
	assertAPIError(t, err, http.StatusUnauthorized, "You are not an admin")

	_, err = f.svc.Dashboard(context.Background(), alice.ID, "nobody")
	assertAPIError(t, err, http.StatusNotFound, "User not found")
}
