package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fansite/forum/internal/auth"
	"github.com/fansite/forum/internal/forum"
	"github.com/fansite/forum/pkg/logging"
	"github.com/fansite/forum/pkg/telemetry"
)

// maxBodyBytes fits a base64 image of forum.MaxImagePayload plus the text fields
var maxBodyBytes = int64(base64.StdEncoding.EncodedLen(forum.MaxImagePayload)) + 64<<10

const (
	actorKey        = "forum.actor"
	requestIDKey    = "forum.request_id"
	requestIDHeader = "X-Request-ID"
)

// HandlerFunc handles one REST operation on behalf of the resolved actor
// and returns the success status and body.
type HandlerFunc func(c *gin.Context, actor *forum.Actor) (int, interface{}, error)

// resolveActor runs the resolver once per request. Invalid credentials end the
// request with 401; missing credentials leave the request anonymous.
func resolveActor(resolver auth.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		actor, err := resolver.Resolve(c)
		if err != nil {
			logging.WithRequestID(logger, requestID).Debug("Rejected credentials", zap.Error(err))
			apiErr, _ := toAPIError(err)
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
			return
		}
		if actor != nil {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) *forum.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(*forum.Actor); ok {
			return actor
		}
	}
	return nil
}

// handle wraps a HandlerFunc with tracing, actor lookup and error mapping
func (r *Router) handle(name string, fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "api."+name)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		status, body, err := fn(c, actorFrom(c))
		if err != nil {
			r.sendError(c, name, err)
			return
		}
		if body == nil {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	}
}

// sendError writes the error body; unexpected errors are logged and hidden
func (r *Router) sendError(c *gin.Context, name string, err error) {
	apiErr, expected := toAPIError(err)
	telemetry.RecordError(trace.SpanFromContext(c.Request.Context()), err,
		!expected || apiErr.Status >= http.StatusInternalServerError,
		attribute.String("error.code", apiErr.Code))
	logger := logging.WithRequestID(r.logger, c.GetString(requestIDKey))
	switch {
	case !expected:
		logger.Error("Request failed", zap.String("handler", name), zap.Error(err))
	case apiErr.Status == http.StatusBadGateway:
		logger.Warn("Upstream failure", zap.String("handler", name), zap.Error(err))
	default:
		logger.Debug("Request rejected", zap.String("handler", name), zap.String("code", apiErr.Code))
	}
	c.JSON(apiErr.Status, apiErr)
}

// bindJSON decodes the request body, reporting malformed input as a validation error
func bindJSON(c *gin.Context, dst interface{}) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			e := NewError(http.StatusRequestEntityTooLarge, CodeTooLarge, "request body is too large")
			e.Field = "body"
			return e
		}
		e := NewError(http.StatusBadRequest, CodeValidation, "request body must be valid JSON")
		e.Field = "body"
		return e
	}
	return nil
}

func bindQuery(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		e := NewError(http.StatusBadRequest, CodeValidation, "invalid query parameters")
		e.Field = "query"
		return e
	}
	return nil
}
