package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/repository"
)

// NewRouter assembles the HTTP surface. Every request passes through the
// token resolver; the gate is applied per-route to everything that mutates
// state or exposes another user's social graph.
func NewRouter(userHandler *UserHandler, messageHandler *MessageHandler, userRepo *repository.UserRepository, jwtCfg *middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CurrentUser(jwtCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("", userHandler.SearchUsers)
			users.GET("/:id", userHandler.GetProfile)
			users.GET("/:id/messages", messageHandler.GetUserMessages)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireUser(userRepo))
		{
			protected.PUT("/users/profile", userHandler.UpdateProfile)
			protected.DELETE("/users/account", userHandler.DeleteAccount)
			protected.GET("/users/:id/followers", userHandler.GetFollowers)
			protected.GET("/users/:id/following", userHandler.GetFollowing)
			protected.GET("/users/:id/likes", messageHandler.GetUserLikes)
			protected.POST("/users/:id/follow", userHandler.Follow)
			protected.DELETE("/users/:id/follow", userHandler.Unfollow)

			protected.POST("/messages", messageHandler.CreateMessage)
			protected.DELETE("/messages/:id", messageHandler.DeleteMessage)
			protected.POST("/messages/:id/like", messageHandler.ToggleLike)

			protected.GET("/timeline", messageHandler.GetHomeTimeline)
		}

		api.GET("/messages/:id", messageHandler.GetMessage)
	}

	return router
}
