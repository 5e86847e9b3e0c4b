package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videotube/videotube-api/internal/apierror"
	"github.com/videotube/videotube-api/internal/auth"
	"github.com/videotube/videotube-api/internal/config"
	"github.com/videotube/videotube-api/internal/media"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("store down")

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

// memStore is an in-memory stand-in for the repository. Joined views are
// reduced to what the services inspect.
type memStore struct {
	users     map[primitive.ObjectID]*models.User
	videos    map[primitive.ObjectID]*models.Video
	comments  map[primitive.ObjectID]*models.Comment
	playlists map[primitive.ObjectID]*models.Playlist
	tweets    map[primitive.ObjectID]*models.Tweet
	likes     []models.Like
	subs      []models.Subscription
	views     map[primitive.ObjectID]int64
	history   map[primitive.ObjectID][]primitive.ObjectID

	// createErr fails every insert when set.
	createErr error
	// lostInsertRace makes like and subscription inserts behave as if a
	// concurrent request stored the same document first.
	lostInsertRace bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[primitive.ObjectID]*models.User{},
		videos:    map[primitive.ObjectID]*models.Video{},
		comments:  map[primitive.ObjectID]*models.Comment{},
		playlists: map[primitive.ObjectID]*models.Playlist{},
		tweets:    map[primitive.ObjectID]*models.Tweet{},
		views:     map[primitive.ObjectID]int64{},
		history:   map[primitive.ObjectID][]primitive.ObjectID{},
	}
}

func (m *memStore) addUser(username string) *models.User {
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Email:    username + "@example.com",
		FullName: strings.ToUpper(username[:1]) + username[1:],
		Avatar:   models.Asset{URL: "http://media/" + username, PublicID: "image/" + username + ".png"},
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addVideo(owner primitive.ObjectID, title string) *models.Video {
	v := &models.Video{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Owner:       owner,
		IsPublished: true,
		VideoFile:   models.Asset{URL: "http://media/v", PublicID: "video/" + title + ".mp4"},
		Thumbnail:   models.Asset{URL: "http://media/t", PublicID: "image/" + title + ".png"},
	}
	m.videos[v.ID] = v
	return v
}

// users

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("get user by id")
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetPublicUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := m.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == strings.ToLower(username) {
			return u.Public(), nil
		}
	}
	return nil, notFound("get user by username")
}

func (m *memStore) FindUserForLogin(_ context.Context, username, email string) (*models.User, error) {
	for _, u := range m.users {
		if (username != "" && u.Username == strings.ToLower(username)) || (email != "" && u.Email == strings.ToLower(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("find user for login")
}

func (m *memStore) UsernameOrEmailTaken(_ context.Context, username, email string, exclude primitive.ObjectID) (bool, error) {
	for _, u := range m.users {
		if u.ID == exclude {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	u, ok := m.users[id]
	if !ok {
		return notFound("set refresh token")
	}
	u.RefreshToken = token
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return notFound("update password")
	}
	u.Password = hash
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("update user")
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.CoverImage != nil {
		cover := *upd.CoverImage
		u.CoverImage = &cover
	}
	return u.Public(), nil
}

func (m *memStore) AddToWatchHistory(_ context.Context, userID, videoID primitive.ObjectID) error {
	for _, id := range m.history[userID] {
		if id == videoID {
			return nil
		}
	}
	m.history[userID] = append(m.history[userID], videoID)
	return nil
}

func (m *memStore) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	u, err := m.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound("channel profile")
	}
	n, _ := m.CountSubscribers(ctx, u.ID)
	_, subErr := m.FindSubscription(ctx, viewer, u.ID)
	return &models.ChannelProfile{
		ID:               u.ID,
		Username:         u.Username,
		FullName:         u.FullName,
		SubscribersCount: n,
		IsSubscribed:     subErr == nil,
	}, nil
}

func (m *memStore) WatchHistory(_ context.Context, userID primitive.ObjectID) ([]models.VideoCard, error) {
	out := []models.VideoCard{}
	for _, id := range m.history[userID] {
		if v, ok := m.videos[id]; ok {
			out = append(out, models.VideoCard{ID: v.ID, Title: v.Title})
		}
	}
	return out, nil
}

func (m *memStore) VideosByOwner(_ context.Context, owner primitive.ObjectID) ([]models.VideoCard, error) {
	out := []models.VideoCard{}
	for _, v := range m.videos {
		if v.Owner == owner {
			out = append(out, models.VideoCard{ID: v.ID, Title: v.Title})
		}
	}
	return out, nil
}

func (m *memStore) DashboardStats(ctx context.Context, owner primitive.ObjectID) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	for _, v := range m.videos {
		if v.Owner != owner {
			continue
		}
		stats.TotalVideos++
		stats.TotalViews += v.Views
		n, _ := m.CountLikes(ctx, models.LikeTargetVideo, v.ID)
		stats.TotalLikes += n
	}
	stats.TotalSubscribers, _ = m.CountSubscribers(ctx, owner)
	return stats, nil
}

// videos

func (m *memStore) CreateVideo(_ context.Context, video *models.Video) error {
	if m.createErr != nil {
		return m.createErr
	}
	video.ID = primitive.NewObjectID()
	cp := *video
	m.videos[video.ID] = &cp
	return nil
}

func (m *memStore) GetVideoByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, notFound("get video by id")
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) ListVideos(_ context.Context, q models.VideoQuery) ([]models.VideoCard, error) {
	out := []models.VideoCard{}
	for _, v := range m.videos {
		if v.IsPublished && strings.Contains(strings.ToLower(v.Title), strings.ToLower(q.Query)) {
			out = append(out, models.VideoCard{ID: v.ID, Title: v.Title})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memStore) RecommendedVideos(_ context.Context, source primitive.ObjectID, keywords []string, limit int64) ([]models.VideoCard, error) {
	out := []models.VideoCard{}
	for _, v := range m.videos {
		if v.ID == source || !v.IsPublished {
			continue
		}
		for _, k := range keywords {
			if strings.Contains(strings.ToLower(v.Title), strings.ToLower(k)) {
				out = append(out, models.VideoCard{ID: v.ID, Title: v.Title})
				break
			}
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) VideoDetail(ctx context.Context, id, viewer primitive.ObjectID) (*models.VideoDetail, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, notFound("video detail")
	}
	likes, _ := m.CountLikes(ctx, models.LikeTargetVideo, id)
	_, likeErr := m.FindLike(ctx, models.LikeTargetVideo, id, viewer)
	return &models.VideoDetail{
		ID:         v.ID,
		Title:      v.Title,
		Views:      v.Views,
		LikesCount: likes,
		IsLiked:    likeErr == nil,
		Owner:      models.VideoOwner{ID: v.Owner},
	}, nil
}

func (m *memStore) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	if v, ok := m.videos[id]; ok {
		v.Views++
	}
	return nil
}

func (m *memStore) UpdateVideo(_ context.Context, id primitive.ObjectID, upd models.VideoUpdate) (*models.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, notFound("update video")
	}
	v.Title, v.Description, v.Thumbnail = upd.Title, upd.Description, upd.Thumbnail
	cp := *v
	return &cp, nil
}

func (m *memStore) SetPublished(_ context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, notFound("set published")
	}
	v.IsPublished = published
	cp := *v
	return &cp, nil
}

func (m *memStore) DeleteVideo(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, notFound("delete video")
	}
	delete(m.videos, id)
	for cid, c := range m.comments {
		if c.Video == id {
			delete(m.comments, cid)
		}
	}
	kept := m.likes[:0]
	for _, l := range m.likes {
		if l.Video == nil || *l.Video != id {
			kept = append(kept, l)
		}
	}
	m.likes = kept
	return v, nil
}

// comments

func (m *memStore) CreateComment(_ context.Context, comment *models.Comment) error {
	if m.createErr != nil {
		return m.createErr
	}
	comment.ID = primitive.NewObjectID()
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *memStore) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, notFound("get comment by id")
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ListComments(_ context.Context, videoID, _ primitive.ObjectID, page models.Page) (*models.CommentPage, error) {
	out := &models.CommentPage{Comments: []models.CommentView{}}
	for _, c := range m.comments {
		if c.Video == videoID {
			out.TotalComments++
			if int64(len(out.Comments)) < page.Limit {
				out.Comments = append(out.Comments, models.CommentView{ID: c.ID, Content: c.Content})
			}
		}
	}
	return out, nil
}

func (m *memStore) UpdateComment(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, notFound("update comment")
	}
	c.Content = content
	cp := *c
	return &cp, nil
}

func (m *memStore) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.comments[id]; !ok {
		return notFound("delete comment")
	}
	delete(m.comments, id)
	return nil
}

// likes

func likeTargetID(l models.Like) primitive.ObjectID {
	switch {
	case l.Video != nil:
		return *l.Video
	case l.Comment != nil:
		return *l.Comment
	case l.Tweet != nil:
		return *l.Tweet
	}
	return primitive.NilObjectID
}

func likeTargetOf(l models.Like) models.LikeTarget {
	switch {
	case l.Video != nil:
		return models.LikeTargetVideo
	case l.Comment != nil:
		return models.LikeTargetComment
	default:
		return models.LikeTargetTweet
	}
}

func (m *memStore) TargetExists(_ context.Context, target models.LikeTarget, id primitive.ObjectID) (bool, error) {
	switch target {
	case models.LikeTargetVideo:
		_, ok := m.videos[id]
		return ok, nil
	case models.LikeTargetComment:
		_, ok := m.comments[id]
		return ok, nil
	case models.LikeTargetTweet:
		_, ok := m.tweets[id]
		return ok, nil
	}
	return false, fmt.Errorf("unknown like target %q", target)
}

func (m *memStore) FindLike(_ context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (*models.Like, error) {
	for _, l := range m.likes {
		if likeTargetOf(l) == target && likeTargetID(l) == targetID && l.LikedBy == userID {
			cp := l
			return &cp, nil
		}
	}
	return nil, notFound("find like")
}

func (m *memStore) CreateLike(_ context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (*models.Like, error) {
	like := models.Like{ID: primitive.NewObjectID(), LikedBy: userID}
	id := targetID
	switch target {
	case models.LikeTargetVideo:
		like.Video = &id
	case models.LikeTargetComment:
		like.Comment = &id
	default:
		like.Tweet = &id
	}
	m.likes = append(m.likes, like)
	if m.lostInsertRace {
		return nil, fmt.Errorf("create like: %w", repository.ErrDuplicateKey)
	}
	return &like, nil
}

func (m *memStore) DeleteLike(_ context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) error {
	for i, l := range m.likes {
		if likeTargetOf(l) == target && likeTargetID(l) == targetID && l.LikedBy == userID {
			m.likes = append(m.likes[:i], m.likes[i+1:]...)
			return nil
		}
	}
	return notFound("delete like")
}

func (m *memStore) CountLikes(_ context.Context, target models.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	var n int64
	for _, l := range m.likes {
		if likeTargetOf(l) == target && likeTargetID(l) == targetID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) LikedVideos(_ context.Context, userID primitive.ObjectID) ([]models.VideoCard, error) {
	out := []models.VideoCard{}
	for i := len(m.likes) - 1; i >= 0; i-- {
		l := m.likes[i]
		if l.Video == nil || l.LikedBy != userID {
			continue
		}
		if v, ok := m.videos[*l.Video]; ok {
			out = append(out, models.VideoCard{ID: v.ID, Title: v.Title})
		}
	}
	return out, nil
}

// subscriptions

func (m *memStore) FindSubscription(_ context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	for _, s := range m.subs {
		if s.Subscriber == subscriber && s.Channel == channel {
			cp := s
			return &cp, nil
		}
	}
	return nil, notFound("find subscription")
}

func (m *memStore) CreateSubscription(_ context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	s := models.Subscription{ID: primitive.NewObjectID(), Subscriber: subscriber, Channel: channel}
	m.subs = append(m.subs, s)
	if m.lostInsertRace {
		return nil, fmt.Errorf("create subscription: %w", repository.ErrDuplicateKey)
	}
	return &s, nil
}

func (m *memStore) DeleteSubscription(_ context.Context, subscriber, channel primitive.ObjectID) error {
	for i, s := range m.subs {
		if s.Subscriber == subscriber && s.Channel == channel {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return notFound("delete subscription")
}

func (m *memStore) CountSubscribers(_ context.Context, channel primitive.ObjectID) (int64, error) {
	var n int64
	for _, s := range m.subs {
		if s.Channel == channel {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ChannelSubscribers(_ context.Context, channel primitive.ObjectID) (*models.ChannelSubscribers, error) {
	out := &models.ChannelSubscribers{Subscribers: []models.OwnerSummary{}}
	for _, s := range m.subs {
		if s.Channel != channel {
			continue
		}
		if u, ok := m.users[s.Subscriber]; ok {
			out.Subscribers = append(out.Subscribers, models.OwnerSummary{ID: u.ID, Username: u.Username})
		}
	}
	out.SubscribersCount = int64(len(out.Subscribers))
	return out, nil
}

func (m *memStore) SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscribedChannel, error) {
	out := []models.SubscribedChannel{}
	for _, s := range m.subs {
		if s.Subscriber != subscriber {
			continue
		}
		if u, ok := m.users[s.Channel]; ok {
			n, _ := m.CountSubscribers(ctx, u.ID)
			out = append(out, models.SubscribedChannel{ID: u.ID, Username: u.Username, SubscriberCount: n})
		}
	}
	return out, nil
}

// playlists

func (m *memStore) CreatePlaylist(_ context.Context, playlist *models.Playlist) error {
	if m.createErr != nil {
		return m.createErr
	}
	playlist.ID = primitive.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	cp := *playlist
	m.playlists[playlist.ID] = &cp
	return nil
}

func (m *memStore) GetPlaylistByID(_ context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("get playlist by id")
	}
	cp := *p
	cp.Videos = append([]primitive.ObjectID{}, p.Videos...)
	return &cp, nil
}

func (m *memStore) PlaylistsByOwner(_ context.Context, owner primitive.ObjectID) ([]models.PlaylistSummary, error) {
	out := []models.PlaylistSummary{}
	for _, p := range m.playlists {
		if p.Owner == owner {
			out = append(out, models.PlaylistSummary{ID: p.ID, Name: p.Name, Owner: p.Owner, TotalVideos: int64(len(p.Videos))})
		}
	}
	return out, nil
}

func (m *memStore) PlaylistDetail(_ context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("playlist detail")
	}
	detail := &models.PlaylistDetail{ID: p.ID, Name: p.Name, Description: p.Description, Videos: []models.VideoCard{}}
	for _, vid := range p.Videos {
		if v, ok := m.videos[vid]; ok {
			detail.Videos = append(detail.Videos, models.VideoCard{ID: v.ID, Title: v.Title})
		}
	}
	return detail, nil
}

func (m *memStore) AddVideoToPlaylist(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("add video to playlist")
	}
	if !p.Contains(videoID) {
		p.Videos = append(p.Videos, videoID)
	}
	return m.GetPlaylistByID(ctx, id)
}

func (m *memStore) RemoveVideoFromPlaylist(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("remove video from playlist")
	}
	kept := []primitive.ObjectID{}
	for _, v := range p.Videos {
		if v != videoID {
			kept = append(kept, v)
		}
	}
	p.Videos = kept
	return m.GetPlaylistByID(ctx, id)
}

func (m *memStore) UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error) {
	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("update playlist")
	}
	p.Name, p.Description = name, description
	return m.GetPlaylistByID(ctx, id)
}

func (m *memStore) DeletePlaylist(_ context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	p, ok := m.playlists[id]
	if !ok {
		return nil, notFound("delete playlist")
	}
	delete(m.playlists, id)
	return p, nil
}

// tweets

func (m *memStore) CreateTweet(_ context.Context, tweet *models.Tweet) error {
	if m.createErr != nil {
		return m.createErr
	}
	tweet.ID = primitive.NewObjectID()
	tweet.Touch(time.Now())
	cp := *tweet
	m.tweets[tweet.ID] = &cp
	return nil
}

func (m *memStore) GetTweetByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	t, ok := m.tweets[id]
	if !ok {
		return nil, notFound("get tweet by id")
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) TweetsByOwner(ctx context.Context, owner, viewer primitive.ObjectID) ([]models.TweetView, error) {
	out := []models.TweetView{}
	for _, t := range m.tweets {
		if t.Owner != owner {
			continue
		}
		n, _ := m.CountLikes(ctx, models.LikeTargetTweet, t.ID)
		_, likeErr := m.FindLike(ctx, models.LikeTargetTweet, t.ID, viewer)
		out = append(out, models.TweetView{ID: t.ID, Content: t.Content, LikesCount: n, IsLiked: likeErr == nil})
	}
	return out, nil
}

func (m *memStore) UpdateTweet(_ context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	t, ok := m.tweets[id]
	if !ok {
		return nil, notFound("update tweet")
	}
	t.Content = content
	cp := *t
	return &cp, nil
}

func (m *memStore) DeleteTweet(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.tweets[id]; !ok {
		return notFound("delete tweet")
	}
	delete(m.tweets, id)
	return nil
}

// fakeMedia records uploads and deletes. Paths listed in failUpload fail.
type fakeMedia struct {
	uploaded   []string
	deleted    []string
	failUpload map[string]bool
	deleteErr  error
	duration   float64
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{failUpload: map[string]bool{}}
}

func (f *fakeMedia) Upload(_ context.Context, localPath string, kind media.Kind) (*media.Asset, error) {
	if localPath == "" {
		return nil, media.ErrEmptyPath
	}
	if f.failUpload[localPath] {
		return nil, errors.New("upload failed")
	}
	f.uploaded = append(f.uploaded, localPath)
	asset := &media.Asset{
		URL:      "http://media/" + localPath,
		PublicID: string(kind) + "/" + localPath,
	}
	if kind == media.KindVideo {
		asset.Duration = f.duration
	}
	return asset, nil
}

func (f *fakeMedia) Delete(_ context.Context, publicID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}

// fakeEmitter collects published routing keys.
type fakeEmitter struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeEmitter) Publish(_ context.Context, key string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeEmitter) published(key string) func() bool {
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, k := range f.keys {
			if k == key {
				return true
			}
		}
		return false
	}
}

// fakeViews reports the first view per (video, viewer) pair.
type fakeViews struct {
	seen map[string]bool
	err  error
}

func (f *fakeViews) FirstView(_ context.Context, videoID, viewerKey string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	key := videoID + "|" + viewerKey
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeViews) Close() error { return nil }

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.AuthConfig{
		AccessTokenSecret:  "access-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})
}

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func assertAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok, "expected an API error, got %v", err)
	assert.Equal(t, status, apiErr.StatusCode)
	assert.Equal(t, message, apiErr.Message)
}

func assertNotOwner(t *testing.T, err error) {
	t.Helper()
	assertAPIError(t, err, http.StatusUnauthorized, msgNotOwner)
}
