package provider

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"
)

// RandomOrgClient draws 256-bit random values from RANDOM.ORG with a CSPRNG
// fallback, so a play never blocks on the external service.
type RandomOrgClient struct {
	apiKey string
	logger *slog.Logger
	client *http.Client
}

// NewRandomOrgClient creates a RANDOM.ORG client. An empty apiKey means
// CSPRNG-only operation.
func NewRandomOrgClient(apiKey string, logger *slog.Logger) *RandomOrgClient {
	return &RandomOrgClient{
		apiKey: apiKey,
		logger: logger,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Draw returns one uniformly random 256-bit value. requestID is forwarded for
// audit correlation on the provider side.
func (c *RandomOrgClient) Draw(ctx context.Context, requestID string) (*big.Int, error) {
	if c.apiKey == "" {
		return csprngValue()
	}

	v, err := c.fetchFromAPI(ctx, requestID)
	if err != nil {
		c.logger.Warn("random.org unavailable, falling back to CSPRNG", "error", err, "request_id", requestID)
		return csprngValue()
	}
	return v, nil
}

func (c *RandomOrgClient) fetchFromAPI(ctx context.Context, requestID string) (*big.Int, error) {
	reqBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "generateBlobs",
		"params": map[string]interface{}{
			"apiKey": c.apiKey,
			"n":      1,
			"size":   256,
			"format": "base64",
		},
		"id": requestID,
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.random.org/json-rpc/4/invoke", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned %d", resp.StatusCode)
	}

	var response struct {
		Result struct {
			Random struct {
				Data []string `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("api error: %s", response.Error.Message)
	}
	if len(response.Result.Random.Data) != 1 {
		return nil, fmt.Errorf("expected 1 blob, got %d", len(response.Result.Random.Data))
	}

	raw, err := base64.StdEncoding.DecodeString(response.Result.Random.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decode blob: %w", err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// csprngValue generates a 256-bit value from crypto/rand.
func csprngValue() (*big.Int, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("csprng: %w", err)
	}
	return new(big.Int).SetBytes(buf), nil
}
