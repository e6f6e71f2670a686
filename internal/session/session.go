package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound возвращается, когда сессия не найдена или истекла
var ErrSessionNotFound = errors.New("session not found")

// Repository определяет интерфейс коллаборатора сессий:
// по session_id отдаёт id текущего пользователя
// Аутентификация как таковая вне скоупа - сессии создаются извне
type Repository interface {
	// CreateSession создаёт новую сессию для пользователя и возвращает session_id
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error)

	// GetUserIDBySession получает user_id по session_id
	// Возвращает ErrSessionNotFound, если сессия не найдена
	GetUserIDBySession(ctx context.Context, sessionID string) (int64, error)

	// DeleteSession удаляет сессию
	DeleteSession(ctx context.Context, sessionID string) error
}
