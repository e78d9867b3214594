package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"water-service/internal/config"
	"water-service/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// DefaultAdminRedirect is where a successful login lands when no safe
// redirect target was supplied.
const DefaultAdminRedirect = "/admin"

type AuthService struct {
	username     string
	passwordHash []byte
	sessions     *SessionService
	jwt          *JWTService
}

func NewAuthService(cfg config.AuthConfig, sessions *SessionService, jwtService *JWTService) (*AuthService, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		generated, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		hash = generated
		slog.Warn("ADMIN_PASSWORD_HASH not set, hashing ADMIN_PASSWORD at startup")
	}

	return &AuthService{
		username:     cfg.AdminUsername,
		passwordHash: hash,
		sessions:     sessions,
		jwt:          jwtService,
	}, nil
}

// Login checks the admin credentials and opens a session. It returns the
// signed token for the cookie together with the session it refers to.
func (s *AuthService) Login(ctx context.Context, username, password, ipAddress, userAgent string) (string, *models.AdminSession, error) {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !usernameMatch || passwordErr != nil {
		return "", nil, ErrInvalidCredentials
	}

	session, err := s.sessions.CreateSession(ctx, username, ipAddress, userAgent)
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwt.GenerateToken(session)
	if err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// Authenticate resolves a token to a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.AdminSession, error) {
	claims, err := s.jwt.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	return s.sessions.ValidateSession(ctx, claims.SessionID)
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.InvalidateSession(ctx, sessionID)
}

// SafeRedirect only allows targets inside the admin area.
func SafeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == DefaultAdminRedirect || strings.HasPrefix(target, DefaultAdminRedirect+"/") || strings.HasPrefix(target, DefaultAdminRedirect+"?") {
		return target
	}
	return DefaultAdminRedirect
}
