package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/videotube/videotube-api/internal/metrics"
	"github.com/videotube/videotube-api/internal/middleware"
	"github.com/videotube/videotube-api/internal/models"
	"github.com/videotube/videotube-api/pkg/logger"
)

// Handlers groups every endpoint handler mounted by NewRouter.
type Handlers struct {
	Health        *HealthHandler
	Users         *UserHandler
	Videos        *VideoHandler
	Comments      *CommentHandler
	Likes         *LikeHandler
	Subscriptions *SubscriptionHandler
	Playlists     *PlaylistHandler
	Tweets        *TweetHandler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			// A literal wildcard cannot be combined with credentials.
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// NewRouter builds the gin engine with middleware and all API routes.
func NewRouter(h Handlers, auth *middleware.JWTAuth, corsOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(ginzap.Ginzap(logger.L(), time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger.L(), true))
	router.Use(cors.New(corsConfig(corsOrigins)))
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NotFound)

	router.GET("/health/live", h.Health.LivenessProbe)
	router.GET("/health/ready", h.Health.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	requireAuth := auth.RequireAuth()
	optionalAuth := auth.OptionalAuth()

	api := router.Group("/api/v1")
	api.GET("/healthcheck", h.Health.HealthCheck)

	users := api.Group("/users")
	{
		users.POST("/register", h.Users.Register)
		users.POST("/login", h.Users.Login)
		users.POST("/refresh-token", h.Users.RefreshToken)
		users.GET("/c/:username", optionalAuth, h.Users.ChannelProfile)
		users.GET("/c/:username/videos", h.Users.ChannelVideos)

		users.POST("/logout", requireAuth, h.Users.Logout)
		users.POST("/change-password", requireAuth, h.Users.ChangePassword)
		users.GET("/current-user", requireAuth, h.Users.CurrentUser)
		users.PATCH("/update-account", requireAuth, h.Users.UpdateAccount)
		users.GET("/history", requireAuth, h.Users.WatchHistory)
		users.GET("/dashboard/:username", requireAuth, h.Users.Dashboard)
	}

	videos := api.Group("/videos")
	{
		videos.GET("", h.Videos.List)
		videos.GET("/recommended/:videoId", h.Videos.Recommended)
		videos.GET("/:videoId", optionalAuth, h.Videos.Get)

		videos.POST("", requireAuth, h.Videos.Publish)
		videos.PATCH("/:videoId", requireAuth, h.Videos.Update)
		videos.DELETE("/:videoId", requireAuth, h.Videos.Delete)
		videos.PATCH("/toggle/publish/:videoId", requireAuth, h.Videos.TogglePublish)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/:videoId", optionalAuth, h.Comments.List)
		comments.POST("/:videoId", requireAuth, h.Comments.Add)
		comments.PATCH("/c/:commentId", requireAuth, h.Comments.Update)
		comments.DELETE("/c/:commentId", requireAuth, h.Comments.Delete)
	}

	likes := api.Group("/likes", requireAuth)
	{
		likes.POST("/toggle/v/:videoId", h.Likes.Toggle(models.LikeTargetVideo, "videoId"))
		likes.POST("/toggle/c/:commentId", h.Likes.Toggle(models.LikeTargetComment, "commentId"))
		likes.POST("/toggle/t/:tweetId", h.Likes.Toggle(models.LikeTargetTweet, "tweetId"))
		likes.GET("/videos", h.Likes.LikedVideos)
	}

	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.POST("/c/:channelId", requireAuth, h.Subscriptions.Toggle)
		subscriptions.GET("/c/:channelId", h.Subscriptions.Subscribers)
		subscriptions.GET("/u/:username", h.Subscriptions.SubscribedChannels)
	}

	playlists := api.Group("/playlist")
	{
		playlists.POST("", requireAuth, h.Playlists.Create)
		playlists.GET("/user/:username", h.Playlists.ByUser)
		playlists.GET("/:playlistId", h.Playlists.Get)
		playlists.PATCH("/add/:videoId/:playlistId", requireAuth, h.Playlists.AddVideo)
		playlists.PATCH("/remove/:videoId/:playlistId", requireAuth, h.Playlists.RemoveVideo)
		playlists.PATCH("/:playlistId", requireAuth, h.Playlists.Update)
		playlists.DELETE("/:playlistId", requireAuth, h.Playlists.Delete)
	}

	tweets := api.Group("/tweets")
	{
		tweets.POST("", requireAuth, h.Tweets.Create)
		tweets.GET("/user/:username", optionalAuth, h.Tweets.ByUser)
		tweets.PATCH("/:tweetId", requireAuth, h.Tweets.Update)
		tweets.DELETE("/:tweetId", requireAuth, h.Tweets.Delete)
	}

	return router
}
