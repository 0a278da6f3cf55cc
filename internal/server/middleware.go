package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	authdomain "github.com/smallbiznis/advisorhub/internal/auth/domain"
	"github.com/smallbiznis/advisorhub/internal/ratelimit"
	"go.uber.org/zap"
)

const ctxUserKey = "auth.user"

// RequestLogger tags each request with an id and emits one structured
// line when it completes. Incoming X-Request-ID values are preserved so
// ids survive proxies.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// AuthRequired validates the bearer token and re-loads the user so
// revoked or deleted accounts are rejected even with a live JWT.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			AbortWithError(c, errUnauthorized)
			return
		}

		claims, err := s.tokens.ParseAccess(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		userID, err := snowflake.ParseString(claims.UserID)
		if err != nil {
			AbortWithError(c, errUnauthorized)
			return
		}

		user, err := s.authSvc.GetUser(c.Request.Context(), userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if user == nil {
			AbortWithError(c, errUnauthorized)
			return
		}
		if !user.EmailVerified {
			AbortWithError(c, authdomain.ErrEmailNotVerified)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// currentUser returns the authenticated user placed by AuthRequired.
func currentUser(c *gin.Context) *authdomain.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*authdomain.User)
	return user
}

// BusinessAccess enforces the business ownership matrix on routes
// carrying a business id path parameter.
func (s *Server) BusinessAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			AbortWithError(c, errUnauthorized)
			return
		}

		businessID, err := snowflake.ParseString(c.Param(param))
		if err != nil {
			AbortWithError(c, errInvalidID)
			return
		}

		if err := s.businessSvc.CheckAccess(c.Request.Context(), businessID, user.ID, user.Role); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}

// RateLimit applies a fixed window keyed by user id, falling back to the
// client IP for anonymous routes.
func (s *Server) RateLimit(limiter *ratelimit.FixedWindow) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if user := currentUser(c); user != nil {
			key = user.ID.String()
		}

		res := limiter.Allow(key)
		if !res.Allowed {
			retryAfter := int(res.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, errTooManyRequests)
			return
		}

		c.Next()
	}
}

// businessID parses the business id path parameter without re-checking
// access; the gate middleware has already run.
func businessID(c *gin.Context, param string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(c.Param(param))
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}
