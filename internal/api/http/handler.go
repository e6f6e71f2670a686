package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/authctx"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/pricing"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/service"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/session"
)

const sessionIDHeader = "x-session-id"

// Handler содержит HTTP-обработчики сервиса
// Зависит от service слоя, но не знает о деталях реализации (HTTP gateway, БД и т.д.)
type Handler struct {
	paymentService *service.PaymentService
	sessions       session.Repository
	catalog        pricing.PriceTable
	sessionTTL     time.Duration
	logger         *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(paymentService *service.PaymentService, sessions session.Repository, catalog pricing.PriceTable, sessionTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		paymentService: paymentService,
		sessions:       sessions,
		catalog:        catalog,
		sessionTTL:     sessionTTL,
		logger:         logger,
	}
}

// CardRequest представляет данные карты в HTTP запросе
// Номер и CVV не логируются и не попадают в ответ
type CardRequest struct {
	Number     *string `json:"number"`
	CVV        *string `json:"cvv"`
	Expiry     *string `json:"expiry"`
	HolderName *string `json:"holder_name"`
}

// PaymentRequest представляет HTTP запрос на проведение платежа
type PaymentRequest struct {
	PolicyID *int64       `json:"policy_id"`
	Amount   *string      `json:"amount"`
	Card     *CardRequest `json:"card"`
}

// PaymentResponse представляет HTTP ответ с информацией о платеже
type PaymentResponse struct {
	ID                 string `json:"id"`
	PolicyID           int64  `json:"policy_id"`
	Timestamp          string `json:"timestamp"`
	Amount             string `json:"amount"`
	MaskedCard         string `json:"masked_card"`
	Status             string `json:"status"`
	ConfirmationNumber string `json:"confirmation_number"`
}

// PostPayments обрабатывает POST /payments - проведение нового платежа
func (h *Handler) PostPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqBody PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		h.logger.Debug("payments: JSON decode error", zap.Error(err))
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	// Валидация входных данных
	if reqBody.PolicyID == nil || reqBody.Amount == nil || reqBody.Card == nil {
		http.Error(w, "Invalid payload: policy_id, amount and card are required", http.StatusBadRequest)
		return
	}
	if reqBody.Card.Number == nil || *reqBody.Card.Number == "" {
		http.Error(w, "Invalid payload: card.number is required", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(*reqBody.Amount)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid payload: amount is not a number: %v", err), http.StatusBadRequest)
		return
	}

	card := service.CardDetails{
		Number: *reqBody.Card.Number,
	}
	if reqBody.Card.CVV != nil {
		card.CVV = *reqBody.Card.CVV
	}
	if reqBody.Card.Expiry != nil {
		card.Expiry = *reqBody.Card.Expiry
	}
	if reqBody.Card.HolderName != nil {
		card.HolderName = *reqBody.Card.HolderName
	}

	res := h.paymentService.ProcessPayment(ctx, *reqBody.PolicyID, amount, card)
	if res.IsError() {
		h.logger.Info("payments: processing rejected", zap.String("reason", res.Message()))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": res.Message()})
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(res.MustData()))
}

// PostPaymentsSync обрабатывает POST /payments/sync - синхронизацию истории с провайдером
func (h *Handler) PostPaymentsSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := authctx.CurrentUserID(ctx)

	if err := h.paymentService.SyncPayments(ctx, userID); err != nil {
		h.logger.Warn("payments: sync failed", zap.Int64("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

// GetPayments обрабатывает GET /payments - снимок локальной истории платежей
func (h *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payments, err := h.paymentService.History(ctx, authctx.CurrentUserID(ctx))
	if err != nil {
		h.logger.Error("payments: history read failed", zap.Error(err))
		http.Error(w, "Failed to read payment history", http.StatusServiceUnavailable)
		return
	}

	resp := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// PremiumRequest представляет HTTP запрос на расчёт премии
type PremiumRequest struct {
	MarketValue  *string `json:"market_value"`
	CoverageType *string `json:"coverage_type"`
}

// PremiumResponse представляет разбивку месячной премии
// Значения округлены до 2 знаков для отображения
type PremiumResponse struct {
	NetPremium string `json:"net_premium"`
	Taxes      string `json:"taxes"`
	Total      string `json:"total"`
}

// PostQuotesPremium обрабатывает POST /quotes/premium - расчёт месячной премии
func (h *Handler) PostQuotesPremium(w http.ResponseWriter, r *http.Request) {
	var reqBody PremiumRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if reqBody.MarketValue == nil {
		http.Error(w, "Invalid payload: market_value is required", http.StatusBadRequest)
		return
	}

	marketValue, err := decimal.NewFromString(*reqBody.MarketValue)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid payload: market_value is not a number: %v", err), http.StatusBadRequest)
		return
	}

	coverage := pricing.CoverageFull
	if reqBody.CoverageType != nil {
		coverage = pricing.CoverageType(*reqBody.CoverageType)
	}

	breakdown := pricing.CalculatePremium(marketValue, coverage)
	writeJSON(w, http.StatusOK, PremiumResponse{
		NetPremium: breakdown.NetPremium.StringFixed(2),
		Taxes:      breakdown.Taxes.StringFixed(2),
		Total:      breakdown.Total.StringFixed(2),
	})
}

// ValuationRequest представляет HTTP запрос на оценку стоимости автомобиля
type ValuationRequest struct {
	Brand *string `json:"brand"`
	Model *string `json:"model"`
	Year  *string `json:"year"`
}

// PostQuotesValuation обрабатывает POST /quotes/valuation - оценку рыночной стоимости
func (h *Handler) PostQuotesValuation(w http.ResponseWriter, r *http.Request) {
	var reqBody ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if reqBody.Brand == nil || reqBody.Model == nil || reqBody.Year == nil {
		http.Error(w, "Invalid payload: brand, model and year are required", http.StatusBadRequest)
		return
	}

	value := pricing.CalculateValue(h.catalog, *reqBody.Brand, *reqBody.Model, *reqBody.Year, time.Now().Year())
	writeJSON(w, http.StatusOK, map[string]string{"value": value.StringFixed(2)})
}

// GetCatalogBrands обрабатывает GET /catalog/brands - список известных марок
func (h *Handler) GetCatalogBrands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"brands": h.catalog.ListBrands()})
}

// SessionRequest представляет HTTP запрос на создание сессии
type SessionRequest struct {
	UserID *int64 `json:"user_id"`
}

// PostSessions обрабатывает POST /sessions - создание сессии пользователя
// Аутентификация вне скоупа: сессия выдаётся по user_id
func (h *Handler) PostSessions(w http.ResponseWriter, r *http.Request) {
	var reqBody SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}
	if reqBody.UserID == nil || *reqBody.UserID <= 0 {
		http.Error(w, "Invalid payload: user_id must be > 0", http.StatusBadRequest)
		return
	}

	sid, err := h.sessions.CreateSession(r.Context(), *reqBody.UserID, h.sessionTTL)
	if err != nil {
		h.logger.Error("sessions: create failed", zap.Error(err))
		http.Error(w, "Failed to create session", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sid})
}

// DeleteSessions обрабатывает DELETE /sessions - завершение сессии из заголовка x-session-id
func (h *Handler) DeleteSessions(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(sessionIDHeader)
	if sid == "" {
		http.Error(w, "session_id is required", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), sid); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.logger.Error("sessions: delete failed", zap.Error(err))
		http.Error(w, "Failed to delete session", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPaymentResponse(p repository.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                 p.LocalID,
		PolicyID:           p.PolicyID,
		Timestamp:          p.Timestamp.UTC().Format(time.RFC3339),
		Amount:             p.Amount.StringFixed(2),
		MaskedCard:         p.MaskedCardSuffix,
		Status:             string(p.Status),
		ConfirmationNumber: p.ConfirmationNumber,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
