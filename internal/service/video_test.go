package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/videotube-api/internal/events"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type videoFixture struct {
	store   *memStore
	media   *fakeMedia
	views   *fakeViews
	emitter *fakeEmitter
	svc     *VideoService
	owner   *models.User
}

func newVideoFixture() *videoFixture {
	f := &videoFixture{
		store:   newMemStore(),
		media:   newFakeMedia(),
		views:   &fakeViews{},
		emitter: &fakeEmitter{},
	}
	f.owner = f.store.addUser("alice")
	f.svc = NewVideoService(f.store, f.media, f.views, f.emitter, validation.New())
	return f
}

func TestRecommendationKeywords(t *testing.T) {
	got := recommendationKeywords("Go tips", "one two three four five six seven eight nine ten eleven")
	assert.Equal(t, []string{"Go", "tips", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}, got)
	assert.Empty(t, recommendationKeywords("", ""))
}

func TestVideoService_Publish(t *testing.T) {
	f := newVideoFixture()
	f.media.duration = 12.5

	video, err := f.svc.Publish(context.Background(), f.owner.ID, PublishInput{
		Title:         "My first video",
		Description:   "hello",
		VideoPath:     "clip.mp4",
		ThumbnailPath: "thumb.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "My first video", video.Title)
	assert.Equal(t, f.owner.ID, video.Owner)
	assert.True(t, video.IsPublished)
	assert.Equal(t, 12.5, video.Duration)
	assert.Equal(t, "video/clip.mp4", video.VideoFile.PublicID)
	assert.Equal(t, "image/thumb.png", video.Thumbnail.PublicID)
	assert.Contains(t, f.store.videos, video.ID)

	assert.Eventually(t, f.emitter.published(events.VideoPublished), time.Second, 10*time.Millisecond)
}

func TestVideoService_PublishStoresPlainText(t *testing.T) {
	f := newVideoFixture()

	video, err := f.svc.Publish(context.Background(), f.owner.ID, PublishInput{
		Title:         `Tom & Jerry's <i>"best"</i> cartoon`,
		Description:   "cats & mice <script>alert(1)</script>",
		VideoPath:     "clip.mp4",
		ThumbnailPath: "thumb.png",
	})
	require.NoError(t, err)

	assert.Equal(t, `Tom & Jerry's "best" cartoon`, video.Title)
	assert.Equal(t, "cats & mice", video.Description)
	assert.Equal(t, video.Title, f.store.videos[video.ID].Title)
}

func TestVideoService_PublishRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      PublishInput
		message string
	}{
		{"no title", PublishInput{VideoPath: "clip.mp4", ThumbnailPath: "thumb.png"}, "All fields are required"},
		{"no video", PublishInput{Title: "t", ThumbnailPath: "thumb.png"}, "Video File is required"},
		{"no thumbnail", PublishInput{Title: "t", VideoPath: "clip.mp4"}, "Thumbnail is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVideoFixture()
			_, err := f.svc.Publish(context.Background(), f.owner.ID, tt.in)
			assertAPIError(t, err, http.StatusBadRequest, tt.message)
			assert.Empty(t, f.media.uploaded)
		})
	}
}

func TestVideoService_PublishThumbnailFailureDiscardsVideo(t *testing.T) {
	f := newVideoFixture()
	f.media.failUpload["thumb.png"] = true

	_, err := f.svc.Publish(context.Background(), f.owner.ID, PublishInput{
		Title: "t", VideoPath: "clip.mp4", ThumbnailPath: "thumb.png",
	})
	assertAPIError(t, err, http.StatusInternalServerError, "Error while uploading thumbnail")
	assert.Equal(t, []string{"video/clip.mp4"}, f.media.deleted)
	assert.Empty(t, f.store.videos)
}

func TestVideoService_GetCountsViewOncePerViewer(t *testing.T) {
	f := newVideoFixture()
	video := f.store.addVideo(f.owner.ID, "intro")
	viewer := f.store.addUser("bob")
	ctx := context.Background()

	detail, err := f.svc.Get(ctx, video.ID, viewer.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Views)

	detail, err = f.svc.Get(ctx, video.ID, viewer.ID, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Views)

	_, err = f.svc.Get(ctx, video.ID, primitive.NilObjectID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.store.videos[video.ID].Views)

	assert.Equal(t, []primitive.ObjectID{video.ID}, f.store.history[viewer.ID])
	assert.Empty(t, f.store.history[primitive.NilObjectID])
}

func TestVideoService_GetCountsViewWhenTrackerFails(t *testing.T) {
	f := newVideoFixture()
	f.views.err = errors.New("redis down")
	video := f.store.addVideo(f.owner.ID, "intro")

	detail, err := f.svc.Get(context.Background(), video.ID, primitive.NilObjectID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Views)
}

func TestVideoService_GetUnknown(t *testing.T) {
	f := newVideoFixture()
	_, err := f.svc.Get(context.Background(), primitive.NewObjectID(), primitive.NilObjectID, "ip")
	assertAPIError(t, err, http.StatusNotFound, "Video not found")
}

func TestVideoService_Recommended(t *testing.T) {
	f := newVideoFixture()
	source := f.store.addVideo(f.owner.ID, "golang basics")
	related := f.store.addVideo(f.owner.ID, "advanced golang")
	f.store.addVideo(f.owner.ID, "cooking pasta")
	hidden := f.store.addVideo(f.owner.ID, "golang drafts")
	hidden.IsPublished = false

	videos, err := f.svc.Recommended(context.Background(), source.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, related.ID, videos[0].ID)

	_, err = f.svc.Recommended(context.Background(), primitive.NewObjectID())
	assertAPIError(t, err, http.StatusNotFound, "Video not found")
}

func TestVideoService_Update(t *testing.T) {
	f := newVideoFixture()
	video := f.store.addVideo(f.owner.ID, "intro")
	video.Description = "old description"

	updated, err := f.svc.Update(context.Background(), video.ID, f.owner.ID, UpdateInput{
		Title:         "renamed",
		ThumbnailPath: "new.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "old description", updated.Description)
	assert.Equal(t, "image/new.png", updated.Thumbnail.PublicID)
	assert.Equal(t, []string{"image/intro.png"}, f.media.deleted)
}

func TestVideoService_OwnerOnly(t *testing.T) {
	f := newVideoFixture()
	video := f.store.addVideo(f.owner.ID, "intro")
	stranger := primitive.NewObjectID()
	ctx := context.Background()

	_, err := f.svc.Update(ctx, video.ID, stranger, UpdateInput{Title: "x"})
	assertNotOwner(t, err)

	_, err = f.svc.Delete(ctx, video.ID, stranger)
	assertNotOwner(t, err)

	_, err = f.svc.TogglePublish(ctx, video.ID, stranger)
	assertNotOwner(t, err)

	assert.Contains(t, f.store.videos, video.ID)
	assert.True(t, f.store.videos[video.ID].IsPublished)
}

func TestVideoService_Delete(t *testing.T) {
	f := newVideoFixture()
	video := f.store.addVideo(f.owner.ID, "intro")

	deleted, err := f.svc.Delete(context.Background(), video.ID, f.owner.ID)
	require.NoError(t, err)

	assert.Equal(t, video.ID, deleted.ID)
	assert.NotContains(t, f.store.videos, video.ID)
	assert.ElementsMatch(t, []string{"video/intro.mp4", "image/intro.png"}, f.media.deleted)
	assert.Eventually(t, f.emitter.published(events.VideoDeleted), time.Second, 10*time.Millisecond)
}

func TestVideoService_DeleteMediaFailure(t *testing.T) {
	f := newVideoFixture()
	video := f.store.addVideo(f.owner.ID, "intro")
	f.media.deleteErr = errors.New("media host down")

	_, err := f.svc.Delete(context.Background(), video.ID, f.owner.ID)
	assertAPIError(t, err, http.StatusInternalServerError, "Error while deleting video files")
}

func TestVideoService_TogglePublish(t *testing.T) {
	f := newVideoFixture()
	video := f.store.addVideo(f.owner.ID, "intro")
	ctx := context.Background()

	updated, err := f.svc.TogglePublish(ctx, video.ID, f.owner.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)

	updated, err = f.svc.TogglePublish(ctx, video.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
}
