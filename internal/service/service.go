package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/authctx"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/gateway"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/repository"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/resource"
)

// fallbackConfirmation - sentinel, когда шлюз подтвердил платёж без номера транзакции
const fallbackConfirmation = "N/A"

// PaymentService содержит бизнес-логику синхронизации платежей
// Композиция удалённого шлюза (источник истины по корректности) и локального
// хранилища (источник истины для презентации). Платёж попадает в локальное
// хранилище только как следствие успешного подтверждения шлюзом или sync pull
type PaymentService struct {
	logger  *zap.Logger
	gateway gateway.PaymentGateway
	repo    repository.PaymentRepository
}

// NewPaymentService создаёт новый экземпляр PaymentService
// Принимает интерфейсы как зависимости - это позволяет легко подменять их в тестах
func NewPaymentService(logger *zap.Logger, gw gateway.PaymentGateway, repo repository.PaymentRepository) *PaymentService {
	return &PaymentService{
		logger:  logger,
		gateway: gw,
		repo:    repo,
	}
}

// CardDetails содержит полные данные карты для одного вызова
// Транзитные данные процесса: никогда не персистятся и не логируются
type CardDetails struct {
	Number     string
	CVV        string
	Expiry     string
	HolderName string
}

// ProcessPayment проводит платёж: удалённый вызов, затем локальная запись при успехе
// Машина состояний: Idle -> Submitting -> {Confirmed, Failed}.
// Confirmed терминален и порождает ровно одну локальную запись,
// Failed терминален и не порождает ни одной; ресабмита внутри компонента нет
func (s *PaymentService) ProcessPayment(ctx context.Context, policyID int64, amount decimal.Decimal, card CardDetails) resource.Resource[repository.Payment] {
	// Валидация: сумма должна быть положительной (до любого I/O)
	if !amount.IsPositive() {
		return resource.Failure[repository.Payment]("invalid amount: must be greater than 0")
	}

	// Личность пользователя читается из контекста ровно один раз;
	// отсутствие - sentinel 0, а не отказ
	userID := authctx.CurrentUserID(ctx)

	s.logger.Info("submitting payment",
		zap.Int64("policy_id", policyID),
		zap.Int64("user_id", userID),
		zap.String("amount", amount.String()),
	)

	res := s.gateway.Submit(ctx, gateway.SubmitRequest{
		PolicyID:   policyID,
		UserID:     userID,
		Amount:     amount.InexactFloat64(),
		CardNumber: card.Number,
		CVV:        card.CVV,
		Expiry:     card.Expiry,
		HolderName: card.HolderName,
	})

	switch res.Status() {
	case resource.StatusSuccess:
		confirmation := res.MustData()
		payment := s.buildConfirmedPayment(policyID, userID, amount, card.Number, confirmation)

		if err := s.repo.Upsert(ctx, payment); err != nil {
			// Платёж подтверждён удалённо, но локальная запись не удалась:
			// не валим операцию - следующий sync восстановит запись из
			// авторитетной удалённой истории
			s.logger.Warn("confirmed payment failed to persist locally, next sync will reconcile",
				zap.Error(err),
				zap.String("confirmation_number", payment.ConfirmationNumber),
			)
		}

		s.logger.Info("payment confirmed",
			zap.Int64("policy_id", policyID),
			zap.String("confirmation_number", payment.ConfirmationNumber),
		)
		return resource.Success(payment)

	case resource.StatusError:
		// Сообщение шлюза уходит вызывающему verbatim; локальных записей нет
		s.logger.Warn("payment failed",
			zap.Int64("policy_id", policyID),
			zap.String("reason", res.Message()),
		)
		return resource.Failure[repository.Payment](res.Message())

	default:
		return resource.Failure[repository.Payment]("gateway returned no final result")
	}
}

// SyncPayments сверяет локальный кэш с авторитетной удалённой историей
// On Success - upsert всей пачки (идемпотентно: повторный sync с неизменной
// историей не даёт наблюдаемых изменений), пустая история - no-op.
// On Error - никаких локальных мутаций; ошибка возвращается вызывающему,
// политика таймаутов/повторов - его ответственность
func (s *PaymentService) SyncPayments(ctx context.Context, userID int64) error {
	res := s.gateway.FetchHistory(ctx, userID)
	if !res.IsSuccess() {
		return fmt.Errorf("fetch payment history: %s", res.Message())
	}

	records := res.MustData()
	if len(records) == 0 {
		return nil
	}

	payments := make([]repository.Payment, 0, len(records))
	for _, rec := range records {
		payments = append(payments, mapRemoteRecord(userID, rec))
	}

	if err := s.repo.UpsertAll(ctx, payments); err != nil {
		return fmt.Errorf("persist synced payments: %w", err)
	}

	s.logger.Info("payments synced",
		zap.Int64("user_id", userID),
		zap.Int("records", len(payments)),
	)
	return nil
}

// WatchHistory возвращает живую последовательность истории платежей пользователя
// Loading эмитится ровно один раз первым, затем Success со свежим списком
// после каждого изменения хранилища. Слияние уже произошло через upsert
// во время предыдущих sync/платежей - здесь нет ни фильтрации, ни merge
func (s *PaymentService) WatchHistory(ctx context.Context, userID int64) (<-chan resource.Resource[[]repository.Payment], error) {
	updates, err := s.repo.WatchByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan resource.Resource[[]repository.Payment], 1)
	go func() {
		defer close(out)
		// Отправка под select: если подписчик бросил канал не дочитав,
		// отмена контекста завершает горутину, а не блокирует её навсегда
		select {
		case out <- resource.Loading[[]repository.Payment]():
		case <-ctx.Done():
			return
		}
		for list := range updates {
			select {
			case out <- resource.Success(list):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// History возвращает текущий снимок истории платежей пользователя
func (s *PaymentService) History(ctx context.Context, userID int64) ([]repository.Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// buildConfirmedPayment синтезирует локальный платёж из подтверждения шлюза
func (s *PaymentService) buildConfirmedPayment(policyID, userID int64, amount decimal.Decimal, cardNumber string, conf gateway.Confirmation) repository.Payment {
	confirmation := conf.TransactionNumber
	if confirmation == "" {
		confirmation = fallbackConfirmation
	}

	// Номер транзакции - естественная идентичность платежа: sync той же записи
	// из удалённой истории попадёт в ту же строку, а не создаст дубликат
	localID := conf.TransactionNumber
	if localID == "" {
		localID = uuid.NewString()
	}

	return repository.Payment{
		LocalID:            localID,
		PolicyID:           policyID,
		UserID:             userID,
		Timestamp:          time.Now().UTC(),
		Amount:             amount,
		MaskedCardSuffix:   MaskCardNumber(cardNumber),
		Status:             repository.StatusApproved,
		ConfirmationNumber: confirmation,
	}
}

// mapRemoteRecord реконструирует локальный платёж из авторитетной удалённой записи
// Ключ - идентичность, назначенная удалённой системой, поэтому повторный sync
// с неизменной историей заменяет записи сами на себя
func mapRemoteRecord(userID int64, rec gateway.HistoryRecord) repository.Payment {
	localID := rec.ConfirmationNumber
	if localID == "" {
		localID = fmt.Sprintf("remote-%d", rec.ID)
	}

	status := repository.StatusApproved
	if strings.EqualFold(rec.Status, string(repository.StatusRejected)) {
		status = repository.StatusRejected
	}

	return repository.Payment{
		LocalID:            localID,
		PolicyID:           rec.PolicyID,
		UserID:             userID,
		Timestamp:          rec.Date,
		Amount:             decimal.NewFromFloat(rec.Amount),
		MaskedCardSuffix:   rec.MaskedCard,
		Status:             status,
		ConfirmationNumber: rec.ConfirmationNumber,
	}
}

// MaskCardNumber возвращает маскированный суффикс карты: "**** " + последние 4 символа
// Единственный фрагмент карты, который когда-либо сохраняется
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return "**** " + number
	}
	return "**** " + number[len(number)-4:]
}
