package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/session"
)

const (
	hashFieldUserID    = "user_id"
	hashFieldCreatedAt = "created_at"
)

// SessionRepository реализует session.Repository используя Redis hash
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository создаёт новый Redis session repository
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client: client,
		logger: logger,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// CreateSession создаёт новую сессию для пользователя в Redis (hash)
func (r *SessionRepository) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	sessionID := uuid.NewString()
	key := sessionKey(sessionID)
	now := time.Now().UTC().Format(time.RFC3339)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, hashFieldUserID, strconv.FormatInt(userID, 10), hashFieldCreatedAt, now)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	if err != nil {
		r.logger.Error("failed to create session hash in redis",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Info("session hash created",
		zap.String("session_id", sessionID),
		zap.Int64("user_id", userID),
		zap.Duration("ttl", ttl),
	)

	return sessionID, nil
}

// GetUserIDBySession получает user_id по session_id из Redis hash
func (r *SessionRepository) GetUserIDBySession(ctx context.Context, sessionID string) (int64, error) {
	key := sessionKey(sessionID)

	raw, err := r.client.HGet(ctx, key, hashFieldUserID).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Debug("session hash not found",
				zap.String("session_id", sessionID),
			)
			return 0, session.ErrSessionNotFound
		}
		r.logger.Error("failed to get session hash from redis",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.logger.Error("session hash has malformed user_id",
			zap.String("session_id", sessionID),
			zap.String("user_id", raw),
		)
		return 0, session.ErrSessionNotFound
	}

	return userID, nil
}

// DeleteSession удаляет сессию (hash) из Redis
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	key := sessionKey(sessionID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("failed to delete session hash from redis",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.logger.Info("session hash deleted",
		zap.String("session_id", sessionID),
	)

	return nil
}
