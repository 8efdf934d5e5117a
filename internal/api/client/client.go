// Package client is the device-side HTTP client for the remote
// submission service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

// Client posts sync batches to the backend. It implements sync.Client.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a sync client. timeout bounds each request end to end.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Submit delivers one batch. Transport failures and 5xx responses come
// back as errors so the queue treats them as retryable; a 2xx with
// per-item failures is a normal response.
func (c *Client) Submit(ctx context.Context, req *sync.BatchRequest) (*sync.BatchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync batch: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sync", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("sync request returned %d: %s", httpResp.StatusCode, string(data))
	}

	var resp sync.BatchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode sync response: %w", err)
	}
	return &resp, nil
}
