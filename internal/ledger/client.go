package ledger

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

	"github.com/tidemart/storefront/internal/config"
)

type Client struct {
	rpcURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new ledger JSON-RPC client
func NewClient(cfg config.LedgerConfig, logger *zap.Logger) *Client {
	// Normalize RPC URL - remove trailing slashes
	rpcURL := strings.TrimSuffix(cfg.RPCURL, "/")

	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// rpcRequest represents a JSON-RPC 2.0 request
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse represents a JSON-RPC 2.0 response
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call executes a JSON-RPC method and unmarshals the result into out
func (c *Client) Call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger RPC error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return nil
}

// GetListings fetches the current on-chain state for a set of product
// listings. Products missing from the returned map no longer exist on the
// ledger.
func (c *Client) GetListings(ctx context.Context, productIDs []string) (map[string]ListingState, error) {
	var listings []ListingState
	if err := c.Call(ctx, "market_getListings", []interface{}{productIDs}, &listings); err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}

	result := make(map[string]ListingState, len(listings))
	for _, l := range listings {
		result[l.ProductID] = l
	}
	return result, nil
}

// GetTransactionStatus re-queries finality for a known digest. Used to
// resolve indeterminate submissions.
func (c *Client) GetTransactionStatus(ctx context.Context, digest string) (*SubmissionResult, error) {
	var result SubmissionResult
	if err := c.Call(ctx, "market_getTransactionStatus", []interface{}{digest}, &result); err != nil {
		return nil, fmt.Errorf("failed to query transaction status: %w", err)
	}
	return &result, nil
}
