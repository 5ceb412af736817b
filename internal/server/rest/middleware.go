package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/server/auth"
	"github.com/dmitrijs2005/kinsync/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Keys under which the middleware stores request identity in gin.Context.
const (
	userIDKey      = "userID"
	workspaceIDKey = "workspaceID"
)

func abortWithError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		s.logger.Error(c.Request.Context(), "panic in handler", "error", err, "path", c.Request.URL.Path)
		abortWithError(c, http.StatusInternalServerError, "internal error")
	})
}

func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.ObserveHTTP(c.Request.Method, route, status, elapsed)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
			"client_ip", c.ClientIP(),
		}
		if uid, ok := c.Get(userIDKey); ok {
			args = append(args, "user", uid)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		if status >= http.StatusInternalServerError {
			s.logger.Error(c.Request.Context(), "request", args...)
			return
		}
		s.logger.Info(c.Request.Context(), "request", args...)
	}
}

// authenticate requires a valid bearer token and stores its user id.
func (s *HTTPServer) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			abortWithError(c, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "token expired")
				return
			}
			abortWithError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// requireWorkspace resolves the tenant from X-Workspace-Id and checks that
// the authenticated user belongs to it.
func (s *HTTPServer) requireWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := strings.TrimSpace(c.GetHeader(common.WorkspaceHeaderName))
		if workspaceID == "" {
			abortWithError(c, http.StatusBadRequest, "missing "+common.WorkspaceHeaderName+" header")
			return
		}
		if _, err := uuid.Parse(workspaceID); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid "+common.WorkspaceHeaderName+" header")
			return
		}

		err := s.members.Check(c.Request.Context(), workspaceID, c.GetString(userIDKey))
		switch {
		case err == nil:
		case errors.Is(err, common.ErrForbidden):
			abortWithError(c, http.StatusForbidden, "not a member of this workspace")
			return
		default:
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(workspaceIDKey, workspaceID)
		c.Next()
	}
}
