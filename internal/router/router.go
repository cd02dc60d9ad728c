package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/drift-desk/driftdesk/internal/handlers"
	"github.com/drift-desk/driftdesk/internal/middleware"
	"github.com/drift-desk/driftdesk/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "The requested resource was not found.",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.NotificationSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/bootstrap", handlers.Bootstrap)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := api.Group("/users", middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			users.POST("", handlers.CreateUser)
			users.GET("", handlers.ListUsers)
			users.GET("/:user_id", handlers.GetUser)
		}

		drifts := api.Group("/drifts", middleware.AuthMiddleware())
		{
			drifts.POST("", handlers.CreateDrift)
			drifts.GET("", handlers.ListDrifts)
			drifts.GET("/:drift_id", handlers.GetDrift)
			drifts.PATCH("/:drift_id", handlers.UpdateDrift)
			drifts.GET("/:drift_id/events", handlers.ListDriftEvents)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.POST("/:drift_id", handlers.AddComment)
			comments.GET("/:drift_id", handlers.ListComments)
			comments.GET("/comment/:comment_id", handlers.GetComment)
			comments.DELETE("/comment/:comment_id", handlers.DeleteComment)
		}

		events := api.Group("/events", middleware.AuthMiddleware())
		{
			events.GET("/user/:user_id", middleware.RequireAdmin(), handlers.ListUserEvents)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.POST("/read/:notification_id", handlers.MarkNotificationRead)
			notifications.POST("/read-all", handlers.MarkAllNotificationsRead)
			notifications.GET("/unread-count", handlers.UnreadNotificationCount)
			notifications.DELETE("/:notification_id", handlers.DeleteNotification)
		}
	}

	return r
}
