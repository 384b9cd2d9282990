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

// TokenLedgerClient talks to the external token service that holds the
// consolation/boost token supply.
type TokenLedgerClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewTokenLedgerClient creates a token ledger HTTP client.
func NewTokenLedgerClient(baseURL string, logger *slog.Logger) *TokenLedgerClient {
	return &TokenLedgerClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenOpRequest struct {
	Account uuid.UUID `json:"account"`
	Amount  int64     `json:"amount"`
}

type tokenErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Mint credits amount to the account. A supply-cap rejection maps to the
// domain error so the play pipeline can surface it unchanged.
func (c *TokenLedgerClient) Mint(ctx context.Context, to uuid.UUID, amount int64) error {
	return c.post(ctx, "/v1/tokens/mint", tokenOpRequest{Account: to, Amount: amount})
}

// BurnFrom debits amount from the account.
func (c *TokenLedgerClient) BurnFrom(ctx context.Context, from uuid.UUID, amount int64) error {
	return c.post(ctx, "/v1/tokens/burn", tokenOpRequest{Account: from, Amount: amount})
}

func (c *TokenLedgerClient) post(ctx context.Context, path string, payload tokenOpRequest) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ErrTransferFailed(fmt.Errorf("token ledger call: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var apiErr tokenErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	switch apiErr.Code {
	case "SUPPLY_EXCEEDED":
		return domain.ErrSupplyExceeded()
	case "INSUFFICIENT_BALANCE":
		return domain.ErrInsufficientBalance()
	}

	c.logger.Error("token ledger rejected operation", "path", path, "status", resp.StatusCode, "code", apiErr.Code)
	return domain.ErrTransferFailed(fmt.Errorf("token ledger returned %d", resp.StatusCode))
}
