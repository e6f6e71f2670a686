package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
)

// Repository реализует PaymentRepository используя PostgreSQL
// Уведомления наблюдателей внутрипроцессные: после каждого commit
// репозиторий перечитывает список пользователя и публикует его в Hub
type Repository struct {
	pool   *pgxpool.Pool
	hub    *repository.Hub
	logger *zap.Logger
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	return &Repository{
		pool:   pool,
		hub:    repository.NewHub(),
		logger: logger,
	}
}

// Upsert сохраняет платёж в PostgreSQL (INSERT ... ON CONFLICT DO UPDATE по local_id)
func (r *Repository) Upsert(ctx context.Context, payment repository.Payment) error {
	_, err := r.pool.Exec(ctx, upsertSQL,
		payment.LocalID,
		payment.PolicyID,
		payment.UserID,
		payment.Timestamp,
		payment.Amount.String(),
		payment.MaskedCardSuffix,
		string(payment.Status),
		payment.ConfirmationNumber,
	)
	if err != nil {
		return fmt.Errorf("upsert payment %s: %w", payment.LocalID, err)
	}

	// Запись уже durable: ошибка уведомления не делает upsert неуспешным
	r.notify(ctx, payment.UserID)
	return nil
}

// UpsertAll атомарно сохраняет пачку платежей в одной транзакции
// Наблюдатели уведомляются один раз на пользователя после commit,
// поэтому частично применённая пачка им не видна
func (r *Repository) UpsertAll(ctx context.Context, payments []repository.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert batch: %w", err)
	}
	// Гарантируем откат транзакции в случае ошибки
	defer tx.Rollback(ctx)

	for _, p := range payments {
		_, err = tx.Exec(ctx, upsertSQL,
			p.LocalID,
			p.PolicyID,
			p.UserID,
			p.Timestamp,
			p.Amount.String(),
			p.MaskedCardSuffix,
			string(p.Status),
			p.ConfirmationNumber,
		)
		if err != nil {
			return fmt.Errorf("upsert payment %s in batch: %w", p.LocalID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert batch: %w", err)
	}

	// Пачка уже durable после commit: ошибка уведомления наблюдателей
	// не должна превращать успешный sync в ошибочный
	affected := make(map[int64]struct{})
	for _, p := range payments {
		affected[p.UserID] = struct{}{}
	}
	for userID := range affected {
		r.notify(ctx, userID)
	}
	return nil
}

// ListByUser возвращает платежи пользователя, отсортированные по времени (DESC)
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]repository.Payment, error) {
	rows, err := r.pool.Query(ctx, listSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments for user %d: %w", userID, err)
	}
	defer rows.Close()

	payments := make([]repository.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments for user %d: %w", userID, err)
	}

	return payments, nil
}

// WatchByUser подписывает наблюдателя на изменения платежей пользователя
func (r *Repository) WatchByUser(ctx context.Context, userID int64) (<-chan []repository.Payment, error) {
	snapshot, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.hub.Subscribe(ctx, userID, snapshot), nil
}

// notify перечитывает список пользователя и публикует его наблюдателям
// Вызывается после durable записи: ошибка перечитывания логируется,
// наблюдатели получат свежий снимок при следующем изменении
func (r *Repository) notify(ctx context.Context, userID int64) {
	snapshot, err := r.ListByUser(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to refresh watcher snapshot after commit",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}
	r.hub.Publish(userID, snapshot)
}

func scanPayment(row pgx.Row) (repository.Payment, error) {
	var (
		p      repository.Payment
		ts     time.Time
		amount string
		status string
	)
	if err := row.Scan(&p.LocalID, &p.PolicyID, &p.UserID, &ts, &amount, &p.MaskedCardSuffix, &status, &p.ConfirmationNumber); err != nil {
		return repository.Payment{}, fmt.Errorf("scan payment row: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return repository.Payment{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}

	p.Timestamp = ts
	p.Amount = parsed
	p.Status = repository.PaymentStatus(status)
	return p, nil
}

const upsertSQL = `
INSERT INTO payments (local_id, policy_id, user_id, ts, amount, masked_card_suffix, status, confirmation_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (local_id) DO UPDATE SET
  policy_id = EXCLUDED.policy_id,
  user_id = EXCLUDED.user_id,
  ts = EXCLUDED.ts,
  amount = EXCLUDED.amount,
  masked_card_suffix = EXCLUDED.masked_card_suffix,
  status = EXCLUDED.status,
  confirmation_number = EXCLUDED.confirmation_number`

const listSQL = `
SELECT local_id, policy_id, user_id, ts, amount::text, masked_card_suffix, status, confirmation_number
FROM payments
WHERE user_id = $1
ORDER BY ts DESC, local_id`
