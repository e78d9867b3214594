package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"water-service/internal/models"
	"water-service/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrSessionRevoked = errors.New("session revoked")
)

type SessionService struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	now         func() time.Time
}

func NewSessionService(sessionRepo repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *SessionService) CreateSession(ctx context.Context, username, ipAddress, userAgent string) (*models.AdminSession, error) {
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	now := s.now()
	session := &models.AdminSession{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession returns the session only if it exists, is not revoked and
// has not expired.
func (s *SessionService) ValidateSession(ctx context.Context, sessionID string) (*models.AdminSession, error) {
	session, err := s.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	if session.RevokedAt != nil {
		return nil, ErrSessionRevoked
	}
	if !session.IsActive(s.now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *SessionService) InvalidateSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	err := s.sessionRepo.RevokeSession(ctx, sessionID, s.now())
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}
