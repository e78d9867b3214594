package models

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminSession is the server-side record behind the admin cookie. A session
// is usable only while it is not revoked and not past ExpiresAt.
type AdminSession struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
}

func (s *AdminSession) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Username  string `json:"username"`
}

type adminSessionKey struct{}

// WithAdminSession attaches the authenticated session to a request context.
func WithAdminSession(ctx context.Context, session *AdminSession) context.Context {
	return context.WithValue(ctx, adminSessionKey{}, session)
}

func AdminSessionFromContext(ctx context.Context) (*AdminSession, bool) {
	session, ok := ctx.Value(adminSessionKey{}).(*AdminSession)
	return session, ok && session != nil
}
