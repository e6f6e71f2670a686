package httpapi

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/api/http/middleware"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/health"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/session"
)

// NewRouter создаёт и настраивает HTTP роутер сервиса
// readiness - функция для проверки готовности сервиса (например, проверка БД).
// Если readiness возвращает false, health endpoint вернёт 503 Service Unavailable.
func NewRouter(handler *Handler, sessions session.Repository, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	// /payments* требуют x-session-id (middleware возвращает 401 при отсутствии)
	router.Route("/payments", func(r chi.Router) {
		r.Use(middleware.WithUser(sessions, logger))
		r.Post("/", handler.PostPayments)
		r.Post("/sync", handler.PostPaymentsSync)
		r.Get("/", handler.GetPayments)
	})

	// Котировки и каталог не требуют сессии: это чистые расчёты без состояния
	router.Post("/quotes/premium", handler.PostQuotesPremium)
	router.Post("/quotes/valuation", handler.PostQuotesValuation)
	router.Get("/catalog/brands", handler.GetCatalogBrands)

	// Сессии создаются и завершаются без middleware
	router.Post("/sessions", handler.PostSessions)
	router.Delete("/sessions", handler.DeleteSessions)

	// Health без middleware (не требует сессии)
	router.Get("/health", health.Handler(readiness))

	return router
}
