package api

import (
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the web client's session id
const SessionHeader = "X-Session-ID"

const (
	ctxRequestID = "requestID"
	ctxOwner     = "owner"
	ctxUser      = "user"
)

// SetupMiddleware configures middleware
func SetupMiddleware(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", SessionHeader},
		ExposeHeaders: []string{"Content-Length", SessionHeader},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(RequestLogger())
	r.Use(gin.Recovery())
}

// RequestLogger logs every request with a generated request id
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set(ctxRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}

// owner scopes local state to one browser session
func owner(sessionID string) string {
	return "web:" + sessionID
}

// identify resolves the session id header into an owner
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(SessionHeader))
		if err != nil {
			s.abort(c, errors.NewUnauthenticatedError())
			return
		}
		c.Set(ctxOwner, owner(id.String()))
		c.Next()
	}
}

// requireSession lets only signed-in owners through
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.deps.Sessions.Require(c.Request.Context(), c.GetString(ctxOwner))
		if err != nil {
			s.abort(c, err)
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}
