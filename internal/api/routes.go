// Package api exposes the agent's local control API.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smallbasket/internal/api/handlers"
	"smallbasket/internal/api/middleware"
)

type Router struct {
	statusHandler       *handlers.StatusHandler
	locationHandler     *handlers.LocationHandler
	notificationHandler *handlers.NotificationHandler
	metrics             http.Handler
	controlToken        string
	logger              logrus.FieldLogger
}

func NewRouter(
	statusHandler *handlers.StatusHandler,
	locationHandler *handlers.LocationHandler,
	notificationHandler *handlers.NotificationHandler,
	metrics http.Handler,
	controlToken string,
	logger logrus.FieldLogger,
) *Router {
	return &Router{
		statusHandler:       statusHandler,
		locationHandler:     locationHandler,
		notificationHandler: notificationHandler,
		metrics:             metrics,
		controlToken:        controlToken,
		logger:              logger,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	if r.logger != nil {
		engine.Use(middleware.RequestLogger(r.logger))
	}

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus scrapes without the control token.
	if r.metrics != nil {
		engine.GET("/metrics", gin.WrapH(r.metrics))
	}

	api := engine.Group("/")
	api.Use(middleware.ControlAuth(r.controlToken))
	{
		api.GET("/status", r.statusHandler.Status)
		api.POST("/status/refresh", r.statusHandler.Refresh)

		api.GET("/location", r.locationHandler.GetLocation)
		api.POST("/location/sync", r.locationHandler.Sync)
		api.PUT("/location/tracking", r.locationHandler.SetTracking)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", r.notificationHandler.List)
			notifications.POST("", r.notificationHandler.Ingest)
			notifications.DELETE("", r.notificationHandler.Clear)
			notifications.GET("/unread-count", r.notificationHandler.UnreadCount)
			notifications.PATCH("/read-all", r.notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", r.notificationHandler.MarkRead)
			notifications.DELETE("/:id", r.notificationHandler.Delete)
		}
	}
}
