package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"water-service/internal/models"
	"water-service/shared/utils"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores admin sessions in Redis.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.AdminSession) error
	GetSession(ctx context.Context, sessionID string) (*models.AdminSession, error)
	RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("admin_session:%s", sessionID)
}

// CreateSession stores the session until its ExpiresAt.
func (r *sessionRepository) CreateSession(ctx context.Context, session *models.AdminSession) error {
	if session.ID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s is already expired", session.ID)
	}

	data, err := utils.SerializeModel(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetSession(ctx context.Context, sessionID string) (*models.AdminSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.AdminSession
	if err := utils.DeserializeModel(data, &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	return &session, nil
}

// RevokeSession marks the session revoked and keeps it until its natural
// expiry so a replayed token is rejected as revoked rather than unknown.
func (r *sessionRepository) RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	session, err := r.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.RevokedAt != nil {
		return nil
	}
	session.RevokedAt = &revokedAt

	data, err := utils.SerializeModel(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := r.client.SetArgs(ctx, sessionKey(sessionID), data, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
