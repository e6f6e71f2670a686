package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/authctx"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/session"
)

const sessionIDHeader = "x-session-id"

// WithUser — HTTP middleware: читает заголовок x-session-id, резолвит user_id
// через session.Repository и кладёт его в context
// 401 при отсутствии заголовка или невалидной сессии
func WithUser(sessions session.Repository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := r.Header.Get(sessionIDHeader)
			if sid == "" {
				http.Error(w, "session_id is required", http.StatusUnauthorized)
				return
			}

			userID, err := sessions.GetUserIDBySession(r.Context(), sid)
			if err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					http.Error(w, "session invalid or expired", http.StatusUnauthorized)
					return
				}
				logger.Error("session lookup failed", zap.Error(err))
				http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := authctx.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
