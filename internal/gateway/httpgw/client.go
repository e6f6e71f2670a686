package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/gateway"
	"github.com/TesisEnel/InsurePal-ErickStrada-Ap2-sub001/internal/resource"
)

// Client реализует PaymentGateway через JSON-over-HTTP API удалённой системы
type Client struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// NewClient создаёт новый HTTP клиент платёжного шлюза
func NewClient(logger *zap.Logger, cfg gateway.Config) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// submitRequest - тело POST /payments/submit
type submitRequest struct {
	PolicyID   int64   `json:"policy_id"`
	UserID     int64   `json:"user_id"`
	Amount     float64 `json:"amount"`
	CardNumber string  `json:"card_number"`
	CVV        string  `json:"cvv"`
	Expiry     string  `json:"expiry"`
	HolderName string  `json:"holder_name"`
}

// submitResponse - ответ шлюза на проведение платежа
// Шлюз отвечает так: {"success": true, "message": "...", "transaction_number": "TX-1"}
// или {"success": false, "message": "insufficient funds"}
type submitResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	TransactionNumber string `json:"transaction_number"`
}

// historyRecord - авторитетная запись истории в ответе шлюза
type historyRecord struct {
	ID                 int64   `json:"id"`
	PolicyID           int64   `json:"policy_id"`
	Amount             float64 `json:"amount"`
	Date               string  `json:"date"` // RFC3339
	Status             string  `json:"status"`
	MaskedCard         string  `json:"masked_card"`
	ConfirmationNumber string  `json:"confirmation_number"`
}

// Submit проводит платёж через удалённый шлюз
// Классификация исходов: transport failure и non-2xx -> Error,
// 2xx с success=false -> Error с сообщением сервера,
// 2xx с пустым телом -> Error("empty response"), иначе Success
func (c *Client) Submit(ctx context.Context, req gateway.SubmitRequest) resource.Resource[gateway.Confirmation] {
	payload := submitRequest{
		PolicyID:   req.PolicyID,
		UserID:     req.UserID,
		Amount:     req.Amount,
		CardNumber: req.CardNumber,
		CVV:        req.CVV,
		Expiry:     req.Expiry,
		HolderName: req.HolderName,
	}

	body, status, err := c.post(ctx, "/payments/submit", payload)
	if err != nil {
		return resource.Failure[gateway.Confirmation](err.Error())
	}
	if msg, ok := classifyStatus(status, body); !ok {
		return resource.Failure[gateway.Confirmation](msg)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return resource.Failure[gateway.Confirmation]("empty response")
	}

	var parsed submitResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return resource.Failure[gateway.Confirmation](fmt.Sprintf("invalid response: %v", err))
	}

	if !parsed.Success {
		// Application-level отказ при 2xx: сообщение сервера уходит вызывающему verbatim
		return resource.Failure[gateway.Confirmation](parsed.Message)
	}

	c.logger.Debug("payment submitted",
		zap.Int64("policy_id", req.PolicyID),
		zap.String("transaction_number", parsed.TransactionNumber),
	)

	return resource.Success(gateway.Confirmation{
		Message:           parsed.Message,
		TransactionNumber: parsed.TransactionNumber,
	})
}

// FetchHistory получает авторитетную историю платежей пользователя
// Пустой корректный список - Success([]), а не ошибка
func (c *Client) FetchHistory(ctx context.Context, userID int64) resource.Resource[[]gateway.HistoryRecord] {
	url := fmt.Sprintf("%s/payments/history?user_id=%d", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resource.Failure[[]gateway.HistoryRecord](fmt.Sprintf("failed to create request: %v", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return resource.Failure[[]gateway.HistoryRecord](err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resource.Failure[[]gateway.HistoryRecord](fmt.Sprintf("failed to read response: %v", err))
	}
	if msg, ok := classifyStatus(resp.StatusCode, body); !ok {
		return resource.Failure[[]gateway.HistoryRecord](msg)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return resource.Failure[[]gateway.HistoryRecord]("empty response")
	}

	var parsed []historyRecord
	if err := json.Unmarshal(body, &parsed); err != nil {
		return resource.Failure[[]gateway.HistoryRecord](fmt.Sprintf("invalid response: %v", err))
	}

	records := make([]gateway.HistoryRecord, 0, len(parsed))
	for _, rec := range parsed {
		date, err := time.Parse(time.RFC3339, rec.Date)
		if err != nil {
			return resource.Failure[[]gateway.HistoryRecord](fmt.Sprintf("invalid record date %q: %v", rec.Date, err))
		}
		records = append(records, gateway.HistoryRecord{
			ID:                 rec.ID,
			PolicyID:           rec.PolicyID,
			Amount:             rec.Amount,
			Date:               date,
			Status:             rec.Status,
			MaskedCard:         rec.MaskedCard,
			ConfirmationNumber: rec.ConfirmationNumber,
		})
	}

	c.logger.Debug("payment history fetched",
		zap.Int64("user_id", userID),
		zap.Int("records", len(records)),
	)

	return resource.Success(records)
}

// post отправляет JSON payload и возвращает тело и статус ответа
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// classifyStatus сворачивает non-2xx статус в сообщение ошибки "HTTP <code>: <reason>"
// При не-2xx тело ответа используется для диагностики и не декодируется как JSON
func classifyStatus(status int, body []byte) (string, bool) {
	if status >= 200 && status < 300 {
		return "", true
	}
	reason := strings.TrimSpace(string(body))
	if reason == "" {
		reason = http.StatusText(status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, reason), false
}
