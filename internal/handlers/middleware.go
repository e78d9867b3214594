package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"water-service/internal/models"
	"water-service/internal/services"
	"water-service/shared/utils"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName carries the signed admin session token.
	SessionCookieName = "admin_session"
	adminSessionKey   = "admin_session"
)

type Middleware struct {
	authService *services.AuthService
}

func NewMiddleware(authService *services.AuthService) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// tokenFromRequest prefers the session cookie and falls back to a bearer
// header for scripted clients.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// RequireAdmin rejects the request unless it carries a live admin session.
// The session is placed on both the gin context and the request context.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse("MISSING_TOKEN", "admin login required"))
			return
		}

		session, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			slog.Warn("admin session rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.CreateErrorResponse("SESSION_INVALID", "no session found or session invalid"))
			return
		}

		c.Set(adminSessionKey, session)
		c.Request = c.Request.WithContext(models.WithAdminSession(c.Request.Context(), session))
		c.Next()
	}
}

// Recovery turns a panic into the generic error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			utils.CreateErrorResponse("INTERNAL_ERROR", "An unexpected error occurred. Please try again."))
	})
}
