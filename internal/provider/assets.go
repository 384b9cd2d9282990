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

// AssetBridgeClient talks to the external custody service that actually holds
// NFTs and tokens while they sit in escrow.
type AssetBridgeClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
}

// NewAssetBridgeClient creates an asset bridge HTTP client.
func NewAssetBridgeClient(baseURL string, logger *slog.Logger) *AssetBridgeClient {
	return &AssetBridgeClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type assetTransferRequest struct {
	Asset   domain.AssetRef `json:"asset"`
	Account uuid.UUID       `json:"account"`
}

// PullIn takes custody of the asset from the depositor.
func (c *AssetBridgeClient) PullIn(ctx context.Context, asset domain.AssetRef, from uuid.UUID) error {
	return c.post(ctx, "/v1/custody/pull", assetTransferRequest{Asset: asset, Account: from})
}

// PushOut releases the asset from custody to the recipient.
func (c *AssetBridgeClient) PushOut(ctx context.Context, asset domain.AssetRef, to uuid.UUID) error {
	return c.post(ctx, "/v1/custody/push", assetTransferRequest{Asset: asset, Account: to})
}

func (c *AssetBridgeClient) post(ctx context.Context, path string, payload assetTransferRequest) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ErrTransferFailed(fmt.Errorf("asset bridge call: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("asset bridge rejected transfer", "path", path, "status", resp.StatusCode)
		return domain.ErrTransferFailed(fmt.Errorf("asset bridge returned %d", resp.StatusCode))
	}
	return nil
}
