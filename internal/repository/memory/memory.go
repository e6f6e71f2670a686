package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
)

// MemoryRepository реализует PaymentRepository используя in-memory хранилище
// Используется для локальной разработки и тестирования
// В docker-окружении заменяется на реализацию с PostgreSQL
type MemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]repository.Payment // ключ = LocalID
	hub      *repository.Hub
}

// NewMemoryRepository создаёт новый in-memory репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		payments: make(map[string]repository.Payment),
		hub:      repository.NewHub(),
	}
}

// Upsert сохраняет платёж в памяти (insert-or-replace по LocalID)
// После записи рассылает наблюдателям свежий снимок списка пользователя
func (r *MemoryRepository) Upsert(ctx context.Context, payment repository.Payment) error {
	r.mu.Lock()
	r.payments[payment.LocalID] = payment
	snapshot := r.listLocked(payment.UserID)
	r.mu.Unlock()

	r.hub.Publish(payment.UserID, snapshot)
	return nil
}

// UpsertAll атомарно сохраняет пачку платежей
// Пачка применяется под одной блокировкой и рассылается одним снимком на пользователя:
// частично применённое состояние наблюдателям не видно
func (r *MemoryRepository) UpsertAll(ctx context.Context, payments []repository.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	r.mu.Lock()
	affected := make(map[int64]struct{})
	for _, p := range payments {
		r.payments[p.LocalID] = p
		affected[p.UserID] = struct{}{}
	}
	snapshots := make(map[int64][]repository.Payment, len(affected))
	for userID := range affected {
		snapshots[userID] = r.listLocked(userID)
	}
	r.mu.Unlock()

	for userID, snapshot := range snapshots {
		r.hub.Publish(userID, snapshot)
	}
	return nil
}

// ListByUser возвращает платежи пользователя, отсортированные по времени (DESC)
func (r *MemoryRepository) ListByUser(ctx context.Context, userID int64) ([]repository.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(userID), nil
}

// WatchByUser подписывает наблюдателя на изменения платежей пользователя
// Новый подписчик сразу получает текущий снимок, затем обновления
func (r *MemoryRepository) WatchByUser(ctx context.Context, userID int64) (<-chan []repository.Payment, error) {
	r.mu.RLock()
	snapshot := r.listLocked(userID)
	r.mu.RUnlock()

	return r.hub.Subscribe(ctx, userID, snapshot), nil
}

// listLocked собирает отсортированный список платежей пользователя
// Вызывается только под блокировкой
func (r *MemoryRepository) listLocked(userID int64) []repository.Payment {
	list := make([]repository.Payment, 0)
	for _, p := range r.payments {
		if p.UserID == userID {
			list = append(list, p)
		}
	}

	// Сортировка по времени DESC, при равенстве - по LocalID для стабильного порядка
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].LocalID < list[j].LocalID
	})

	return list
}
