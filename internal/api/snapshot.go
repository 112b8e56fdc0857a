package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pilumvli199/DT6/internal/instrument"
)

// LTPResponse is the snapshot endpoint response:
// {"data": {segment: {securityID: {last_price: ...}}}}.
// Leaf records are kept loosely typed; the wire shape varies and the
// price key is probed by the extraction rules in the feed package.
type LTPResponse struct {
	Data map[string]map[string]map[string]any `json:"data"`
}

// LTPSnapshot POSTs the segment-grouped security ids to the snapshot
// endpoint. Attempts are bounded with a linearly increasing sleep between
// them; every non-2xx response or transport error counts as a failed
// attempt. Exhausted attempts return (nil, lastErr) and the caller treats
// nil as a no-response cycle.
func (c *Client) LTPSnapshot(ctx context.Context, grouped map[instrument.Segment][]int) (*LTPResponse, error) {
	payload := make(map[string][]int, len(grouped))
	for seg, ids := range grouped {
		payload[string(seg)] = ids
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			// Linear backoff: base, 2*base, 3*base, ...
			wait := time.Duration(attempt-1) * c.retryBackoff
			c.logger.Debug("retrying snapshot request",
				"attempt", attempt,
				"backoff", wait,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := c.postSnapshot(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if apiErr, ok := err.(*APIError); ok {
			c.logger.Warn("snapshot request failed",
				"attempt", attempt,
				"status", apiErr.StatusCode,
				"body", string(apiErr.Body),
			)
		} else {
			c.logger.Warn("snapshot request failed",
				"attempt", attempt,
				"error", err,
			)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("snapshot attempts exhausted: %w", lastErr)
}

func (c *Client) postSnapshot(ctx context.Context, body []byte) (*LTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.snapshotURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("access-token", c.accessToken)
	req.Header.Set("client-id", c.clientID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respBody,
		}
	}

	var out LTPResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot response: %w", err)
	}

	return &out, nil
}
