package server

import (
	"strings"
	"time"

	"anoa.com/kawansosial/internal/config"
	"anoa.com/kawansosial/internal/middleware"

	commentHttp "anoa.com/kawansosial/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/kawansosial/internal/modules/comment/repository"
	commentService "anoa.com/kawansosial/internal/modules/comment/service"

	friendshipHttp "anoa.com/kawansosial/internal/modules/friendship/delivery/http"
	friendshipRepo "anoa.com/kawansosial/internal/modules/friendship/repository"
	friendshipService "anoa.com/kawansosial/internal/modules/friendship/service"

	mentionRepo "anoa.com/kawansosial/internal/modules/mention/repository"
	mentionService "anoa.com/kawansosial/internal/modules/mention/service"

	notifHttp "anoa.com/kawansosial/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/kawansosial/internal/modules/notification/repository"
	notifService "anoa.com/kawansosial/internal/modules/notification/service"

	postHttp "anoa.com/kawansosial/internal/modules/post/delivery/http"
	postRepo "anoa.com/kawansosial/internal/modules/post/repository"
	postService "anoa.com/kawansosial/internal/modules/post/service"

	reactionHttp "anoa.com/kawansosial/internal/modules/reaction/delivery/http"
	reactionRepo "anoa.com/kawansosial/internal/modules/reaction/repository"
	reactionService "anoa.com/kawansosial/internal/modules/reaction/service"

	searchService "anoa.com/kawansosial/internal/modules/search/service"

	userHttp "anoa.com/kawansosial/internal/modules/user/delivery/http"
	userRepo "anoa.com/kawansosial/internal/modules/user/repository"
	userService "anoa.com/kawansosial/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := searchService.NewSearchService(meiliClient)

	users := userRepo.NewUserRepository(db)
	posts := postRepo.NewPostRepository(db)
	comments := commentRepo.NewCommentRepository(db)
	reactions := reactionRepo.NewReactionRepository(db)
	mentions := mentionRepo.NewMentionRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)
	friendships := friendshipRepo.NewFriendshipRepository(db)

	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	mentionSvc := mentionService.NewMentionService(mentions, comments, notificationSvc)

	reactionSvc := reactionService.NewReactionService(reactions, posts, comments, redisClient)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	postSvc := postService.NewPostService(posts, users, reactions, searchSvc, redisClient, cfg.RateLimitGlobal)
	postHandler := postHttp.NewPostHandler(postSvc)

	commentSvc := commentService.NewCommentService(comments, posts, reactions, mentionSvc, redisClient, cfg.RateLimitComment)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	userSvc := userService.NewUserService(users, searchSvc)
	userHandler := userHttp.NewUserHandler(userSvc)

	friendshipSvc := friendshipService.NewFriendshipService(friendships, users, notificationSvc)
	friendshipHandler := friendshipHttp.NewFriendshipHandler(friendshipSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Post routes
		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts", postHandler.GetFeed)
		protected.GET("/posts/:post_id", postHandler.GetPost)
		protected.GET("/posts/user/:username", postHandler.GetPostsByUsername)
		protected.PUT("/posts/:post_id", postHandler.UpdatePost)
		protected.DELETE("/posts/:post_id", postHandler.DeletePost)

		// Comment routes
		protected.POST("/posts/:post_id/comments", commentHandler.CreateComment)
		protected.GET("/posts/:post_id/comments", commentHandler.GetCommentsByPost)
		protected.GET("/comments/:id", commentHandler.GetComment)
		protected.PUT("/comments/:id", commentHandler.UpdateComment)
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)

		// Reaction routes
		protected.POST("/reactions", reactionHandler.SetReaction)
		protected.GET("/reactions/:kind/:id", reactionHandler.GetReactions)

		// Profile routes
		protected.GET("/profile/me", userHandler.GetCurrentProfile)
		protected.GET("/profile/:username", userHandler.GetProfile)
		protected.PUT("/profile", userHandler.UpdateProfile)
		protected.GET("/users/search", userHandler.SearchUsers)

		// Friendship routes
		protected.POST("/friends/requests", friendshipHandler.SendRequest)
		protected.GET("/friends/requests", friendshipHandler.GetPendingRequests)
		protected.PUT("/friends/requests/:id/accept", friendshipHandler.AcceptRequest)
		protected.PUT("/friends/requests/:id/reject", friendshipHandler.RejectRequest)
		protected.DELETE("/friends/requests/to/:user_id", friendshipHandler.CancelRequest)
		protected.GET("/friends", friendshipHandler.GetFriends)
		protected.DELETE("/friends/:user_id", friendshipHandler.Unfriend)
		protected.GET("/friends/suggestions", friendshipHandler.GetSuggestions)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
