package repository

import (
	"context"
	"sync"
)

// Hub рассылает подписчикам свежие снимки списка платежей пользователя
// Доставка неблокирующая: канал подписчика буферизован на один элемент,
// устаревший непрочитанный снимок вытесняется свежим (conflation),
// так что producer никогда не ждёт медленного наблюдателя
type Hub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int64]map[int]chan []Payment // userID -> подписчики
}

// NewHub создаёт новый Hub
func NewHub() *Hub {
	return &Hub{
		watchers: make(map[int64]map[int]chan []Payment),
	}
}

// Subscribe регистрирует подписчика на изменения платежей пользователя
// и сразу доставляет ему начальный снимок. Канал закрывается при отмене ctx
func (h *Hub) Subscribe(ctx context.Context, userID int64, snapshot []Payment) <-chan []Payment {
	ch := make(chan []Payment, 1)
	ch <- snapshot

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.watchers[userID] == nil {
		h.watchers[userID] = make(map[int]chan []Payment)
	}
	h.watchers[userID][id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if subs, ok := h.watchers[userID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(h.watchers, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish доставляет свежий снимок всем подписчикам пользователя
// Вызывается после завершённой записи: снимок уже отражает её целиком
func (h *Hub) Publish(userID int64, snapshot []Payment) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.watchers[userID] {
		// Вытесняем непрочитанный устаревший снимок, затем кладём свежий
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
