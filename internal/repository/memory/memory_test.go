package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
)

func payment(localID string, userID int64, ts time.Time) repository.Payment {
	return repository.Payment{
		LocalID:            localID,
		PolicyID:           10,
		UserID:             userID,
		Timestamp:          ts,
		Amount:             decimal.NewFromInt(150),
		MaskedCardSuffix:   "**** 1234",
		Status:             repository.StatusApproved,
		ConfirmationNumber: "CONF-" + localID,
	}
}

func TestMemoryRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p := payment("p-1", 1, time.Now())

	require.NoError(t, repo.Upsert(ctx, p))
	require.NoError(t, repo.Upsert(ctx, p))

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, p.LocalID, list[0].LocalID)
}

func TestMemoryRepository_ListOrderedByTimestampDesc(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, payment("old", 1, base.Add(-time.Hour))))
	require.NoError(t, repo.Upsert(ctx, payment("new", 1, base.Add(time.Hour))))
	require.NoError(t, repo.Upsert(ctx, payment("mid", 1, base)))

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "new", list[0].LocalID)
	require.Equal(t, "mid", list[1].LocalID)
	require.Equal(t, "old", list[2].LocalID)
}

func TestMemoryRepository_ListIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Upsert(ctx, payment("a", 1, time.Now())))
	require.NoError(t, repo.Upsert(ctx, payment("b", 2, time.Now())))

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a", list[0].LocalID)
}

func TestMemoryRepository_WatchDeliversSnapshotThenUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Upsert(ctx, payment("p-1", 1, time.Now())))

	ch, err := repo.WatchByUser(ctx, 1)
	require.NoError(t, err)

	// Новый подписчик сразу получает текущий снимок
	initial := receive(t, ch)
	require.Len(t, initial, 1)

	// Изменение таблицы порождает повторную эмиссию полного списка
	require.NoError(t, repo.Upsert(ctx, payment("p-2", 1, time.Now().Add(time.Minute))))
	updated := receive(t, ch)
	require.Len(t, updated, 2)
	require.Equal(t, "p-2", updated[0].LocalID)
}

func TestMemoryRepository_WatchIgnoresOtherUsers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := NewMemoryRepository()

	ch, err := repo.WatchByUser(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, receive(t, ch))

	// Запись чужого пользователя не будит наблюдателя
	require.NoError(t, repo.Upsert(ctx, payment("other", 2, time.Now())))

	select {
	case list := <-ch:
		t.Fatalf("unexpected emission for another user's write: %v", list)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryRepository_UpsertAllIsObservedAsOneBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := NewMemoryRepository()

	ch, err := repo.WatchByUser(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, receive(t, ch))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	batch := []repository.Payment{
		payment("b-1", 1, base),
		payment("b-2", 1, base.Add(time.Minute)),
		payment("b-3", 1, base.Add(2*time.Minute)),
	}
	require.NoError(t, repo.UpsertAll(ctx, batch))

	// Наблюдатель видит либо всю пачку, либо ничего - частичных списков нет
	emitted := receive(t, ch)
	require.Len(t, emitted, 3)

	select {
	case extra := <-ch:
		t.Fatalf("expected a single emission for the batch, got another: %v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryRepository_UpsertAllEmptyBatchIsNoOp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := NewMemoryRepository()

	ch, err := repo.WatchByUser(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, receive(t, ch))

	require.NoError(t, repo.UpsertAll(ctx, nil))

	select {
	case list := <-ch:
		t.Fatalf("empty batch must not emit, got: %v", list)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryRepository_WatchChannelClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := NewMemoryRepository()

	ch, err := repo.WatchByUser(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, receive(t, ch))

	cancel()

	select {
	case _, open := <-ch:
		require.False(t, open, "channel must be closed after ctx cancel")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after ctx cancel")
	}
}

func receive(t *testing.T, ch <-chan []repository.Payment) []repository.Payment {
	t.Helper()
	select {
	case list := <-ch:
		return list
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
		return nil
	}
}
