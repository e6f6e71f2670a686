package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus представляет статус платежа
type PaymentStatus string

const (
	// StatusApproved - платёж подтверждён удалённой системой
	StatusApproved PaymentStatus = "APPROVED"
	// StatusRejected - платёж отклонён удалённой системой
	StatusRejected PaymentStatus = "REJECTED"
)

// Payment представляет доменную модель платежа
// Это бизнес-сущность, не привязанная к HTTP или БД
// Платёж иммутабелен: повторная синхронизация заменяет запись целиком по LocalID,
// а не редактирует поля. MaskedCardSuffix - единственный фрагмент карты,
// который когда-либо сохраняется; полный номер и CVV живут только в запросе
type Payment struct {
	LocalID            string
	PolicyID           int64
	UserID             int64
	Timestamp          time.Time
	Amount             decimal.Decimal
	MaskedCardSuffix   string
	Status             PaymentStatus
	ConfirmationNumber string
}

// PaymentRepository определяет интерфейс для работы с локальным хранилищем платежей
// Service слой зависит от этого интерфейса, а не от конкретной реализации
// Единственный примитив записи - upsert (insert-or-replace по LocalID),
// поэтому повторное применение той же записи идемпотентно
type PaymentRepository interface {
	// Upsert сохраняет платёж (insert-or-replace по LocalID)
	Upsert(ctx context.Context, payment Payment) error

	// UpsertAll атомарно сохраняет пачку платежей:
	// наблюдатели видят либо всю пачку, либо ничего
	UpsertAll(ctx context.Context, payments []Payment) error

	// ListByUser возвращает платежи пользователя, отсортированные по времени (DESC)
	ListByUser(ctx context.Context, userID int64) ([]Payment, error)

	// WatchByUser возвращает живую последовательность списков платежей пользователя:
	// сначала текущий снимок, затем полный список после каждого изменения таблицы.
	// Канал закрывается при отмене ctx; отказ от подписки не имеет side effects
	WatchByUser(ctx context.Context, userID int64) (<-chan []Payment, error)
}

// ErrUnavailable возвращается, когда хранилище недоступно
// Этот слой не ретраит: ошибка поднимается вызывающему как есть
var ErrUnavailable = errors.New("payment store unavailable")
