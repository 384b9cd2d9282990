package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/google/uuid"
)

// PaymentClient sends native-currency payouts (revenue withdrawals and
// overpayment refunds) through the external payment service.
type PaymentClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewPaymentClient creates a payout HTTP client.
func NewPaymentClient(baseURL string, logger *slog.Logger) *PaymentClient {
	return &PaymentClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type payoutRequest struct {
	To     uuid.UUID `json:"to"`
	Amount int64     `json:"amount"`
}

// Send transfers amount to the account.
func (c *PaymentClient) Send(ctx context.Context, to uuid.UUID, amount int64) error {
	body, _ := json.Marshal(payoutRequest{To: to, Amount: amount})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payouts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ErrTransferFailed(fmt.Errorf("payout call: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("payout rejected", "to", to, "amount", amount, "status", resp.StatusCode)
		return domain.ErrTransferFailed(fmt.Errorf("payout service returned %d", resp.StatusCode))
	}
	return nil
}
