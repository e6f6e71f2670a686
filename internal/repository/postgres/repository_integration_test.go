//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" //для goose миграций

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
)

func TestRepository_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер через testcontainers
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("insurepal"),
		postgres.WithUsername("insurepal_user"),
		postgres.WithPassword("insurepal_password"),
	)
	require.NoError(t, err)
	defer func() {
		err := postgresContainer.Terminate(ctx)
		require.NoError(t, err)
	}()

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Открываем *sql.DB через pgx stdlib для goose миграций
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	// Ждём готовности БД через ping с retry
	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, pingErr, "Failed to ping database after retries")

	// Вычисляем путь к migrations относительно текущего файла
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	// internal/repository/postgres -> корень модуля -> migrations
	testDir := filepath.Dir(filename)
	moduleDir := filepath.Dir(filepath.Dir(filepath.Dir(testDir)))
	migrationsDir := filepath.Join(moduleDir, "migrations")

	err = goose.UpContext(ctx, db, migrationsDir)
	require.NoError(t, err, "Failed to run migrations")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, zap.NewNop())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := repository.Payment{
		LocalID:            "CONF-1001",
		PolicyID:           7,
		UserID:             1,
		Timestamp:          base,
		Amount:             decimal.RequireFromString("245.83"),
		MaskedCardSuffix:   "**** 1234",
		Status:             repository.StatusApproved,
		ConfirmationNumber: "CONF-1001",
	}

	t.Run("upsert and list", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, first))

		list, err := repo.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, first.LocalID, list[0].LocalID)
		require.True(t, first.Amount.Equal(list[0].Amount))
		require.Equal(t, repository.StatusApproved, list[0].Status)
	})

	t.Run("upsert is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, first))

		list, err := repo.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("batch lands atomically and sorted desc", func(t *testing.T) {
		batch := []repository.Payment{
			{
				LocalID:            "CONF-1002",
				PolicyID:           7,
				UserID:             1,
				Timestamp:          base.Add(time.Hour),
				Amount:             decimal.RequireFromString("99.00"),
				MaskedCardSuffix:   "**** 4321",
				Status:             repository.StatusApproved,
				ConfirmationNumber: "CONF-1002",
			},
			{
				LocalID:            "remote-55",
				PolicyID:           8,
				UserID:             1,
				Timestamp:          base.Add(-time.Hour),
				Amount:             decimal.RequireFromString("10.50"),
				MaskedCardSuffix:   "**** 9999",
				Status:             repository.StatusRejected,
				ConfirmationNumber: "",
			},
		}
		require.NoError(t, repo.UpsertAll(ctx, batch))

		list, err := repo.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, "CONF-1002", list[0].LocalID)
		require.Equal(t, "CONF-1001", list[1].LocalID)
		require.Equal(t, "remote-55", list[2].LocalID)
	})

	t.Run("watch delivers snapshot then update", func(t *testing.T) {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		ch, err := repo.WatchByUser(watchCtx, 1)
		require.NoError(t, err)

		initial := <-ch
		require.Len(t, initial, 3)

		late := first
		late.LocalID = "CONF-1003"
		late.ConfirmationNumber = "CONF-1003"
		late.Timestamp = base.Add(2 * time.Hour)
		require.NoError(t, repo.Upsert(ctx, late))

		select {
		case updated := <-ch:
			require.Len(t, updated, 4)
			require.Equal(t, "CONF-1003", updated[0].LocalID)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watch emission")
		}
	})
}
