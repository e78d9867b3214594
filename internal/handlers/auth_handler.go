package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"water-service/internal/models"
	"water-service/internal/services"
	"water-service/shared/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	middleware   *Middleware
	sessionTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, middleware *Middleware, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		middleware:   middleware,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
	}
}

func (a *AuthHandler) RegisterRoutes(router *gin.Engine) {
	authGrPub := router.Group("/water/public/api/v1/admin")
	authGrPub.POST("/login", a.Login)
	authGrPub.POST("/logout", a.Logout)

	authGrPro := router.Group("/water/protected/api/v1", a.middleware.RequireAdmin())
	authGrPro.GET("/session", a.GetMySession)
}

func (a *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", a.secureCookie, true)
}

// Login accepts JSON or form credentials, sets the session cookie and tells
// the client where to go next.
func (a *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("invalid login request format", "error", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "username and password are required"))
		return
	}

	token, session, err := a.authService.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			slog.Warn("admin login failed", "username", req.Username, "ip", c.ClientIP())
			c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("INVALID_CREDENTIALS", "Invalid username or password"))
			return
		}
		slog.Error("admin login error", "error", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("LOGIN_FAILED", "Login failed"))
		return
	}

	a.setSessionCookie(c, token, int(a.sessionTTL.Seconds()))

	slog.Info("admin logged in", "username", session.Username, "session_id", session.ID)
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"session_id":  session.ID,
		"expires_at":  session.ExpiresAt,
		"redirect_to": services.SafeRedirect(req.RedirectTo),
	}))
}

// Logout revokes whatever session the request carries and always clears the
// cookie, so it also works with an already expired token.
func (a *AuthHandler) Logout(c *gin.Context) {
	if token := tokenFromRequest(c); token != "" {
		session, err := a.authService.Authenticate(c.Request.Context(), token)
		if err == nil {
			if err := a.authService.Logout(c.Request.Context(), session.ID); err != nil {
				slog.Error("failed to revoke admin session", "session_id", session.ID, "error", err)
				c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("LOGOUT_FAILED", "Logout failed"))
				return
			}
			slog.Info("admin logged out", "username", session.Username, "session_id", session.ID)
		}
	}

	a.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"logged_out": true}))
}

func (a *AuthHandler) GetMySession(c *gin.Context) {
	session, ok := models.AdminSessionFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.CreateErrorResponse("SESSION_INVALID", "no session found or session invalid"))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(session))
}
