package gateway

import (
	"context"
	"time"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/resource"
)

// SubmitRequest представляет запрос на проведение платежа в удалённой системе
// Полные данные карты живут только здесь, в рамках одного вызова;
// персистентно сохраняется лишь маскированный суффикс (см. service слой)
type SubmitRequest struct {
	PolicyID   int64
	UserID     int64
	Amount     float64
	CardNumber string
	CVV        string
	Expiry     string
	HolderName string
}

// Confirmation представляет подтверждение платежа удалённой системой
type Confirmation struct {
	Message           string
	TransactionNumber string
}

// HistoryRecord представляет авторитетную запись платежа в удалённой системе
type HistoryRecord struct {
	ID                 int64
	PolicyID           int64
	Amount             float64
	Date               time.Time
	Status             string
	MaskedCard         string
	ConfirmationNumber string
}

// PaymentGateway определяет интерфейс удалённого платёжного шлюза
// Чистая граница: ровно одна попытка на вызов, без ретраев на этом слое;
// любой исход (transport, non-2xx, application-level failure, пустое тело)
// сворачивается в Resource, паника через границу не проходит
type PaymentGateway interface {
	// Submit проводит платёж
	Submit(ctx context.Context, req SubmitRequest) resource.Resource[Confirmation]

	// FetchHistory получает авторитетную историю платежей пользователя
	// Пустой корректный список - это Success, а не ошибка
	FetchHistory(ctx context.Context, userID int64) resource.Resource[[]HistoryRecord]
}
