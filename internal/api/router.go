package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/auth"
	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/pkg/logging"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router sets up API routes
type Router struct {
	svc      *forum.Service
	resolver auth.Resolver
	health   HealthChecker
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(svc *forum.Service, resolver auth.Resolver, health HealthChecker) *Router {
	return &Router{
		svc:      svc,
		resolver: resolver,
		health:   health,
		logger:   logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)

	api := engine.Group("/api")
	api.Use(resolveActor(r.resolver, r.logger))

	topics := api.Group("/topics")
	topics.GET("", r.handle("list_topics", r.listTopics))
	topics.POST("", r.handle("create_topic", r.createTopic))
	topics.POST("/like", r.handle("like_topic", r.likeTopic))
	topics.GET("/:id", r.handle("get_topic", r.getTopic))
	topics.PUT("/:id", r.handle("edit_topic", r.editTopic))
	topics.DELETE("/:id", r.handle("delete_topic", r.deleteTopic))
	topics.GET("/:id/history", r.handle("topic_history", r.topicHistory))
	topics.PUT("/:id/pin", r.handle("pin_topic", r.pinTopic))
	topics.PUT("/:id/lock", r.handle("lock_topic", r.lockTopic))

	comments := api.Group("/comments")
	comments.GET("", r.handle("list_comments", r.listComments))
	comments.POST("", r.handle("create_comment", r.createComment))
	comments.POST("/like", r.handle("like_comment", r.likeComment))
	comments.PUT("/:id", r.handle("edit_comment", r.editComment))
	comments.DELETE("/:id", r.handle("delete_comment", r.deleteComment))
	comments.GET("/:id/history", r.handle("comment_history", r.commentHistory))
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if r.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.health.Health(ctx); err != nil {
			r.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "UNAVAILABLE",
				"service": "forum-api",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "forum-api",
	})
}
