package authctx

import (
	"context"
)

type ctxKeyUserID struct{}

var userIDKey = ctxKeyUserID{}

// UnknownUserID - sentinel для случая, когда личность пользователя не установлена
// Операции не падают из-за отсутствия пользователя, а работают от имени 0
const UnknownUserID int64 = 0

// WithUserID сохраняет user_id в контексте (используется HTTP middleware)
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext возвращает user_id из контекста, если он был установлен
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// CurrentUserID возвращает user_id из контекста или UnknownUserID, если он не установлен
// Читается ровно один раз на операцию - контекст вместо ambient singleton
func CurrentUserID(ctx context.Context) int64 {
	if userID, ok := UserIDFromContext(ctx); ok {
		return userID
	}
	return UnknownUserID
}
