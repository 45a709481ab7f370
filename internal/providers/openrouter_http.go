package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// doRequest makes an HTTP request to OpenRouter with retry logic. It returns
// the parsed response and the number of attempts made.
func (c *OpenRouterClient) doRequest(ctx context.Context, path string, body *openRouterRequest) (*openRouterResponse, int, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt, err
		}

		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, attempt + 1, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, attempt + 1, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.backoff(ctx, attempt)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			c.backoff(ctx, attempt)
			continue
		}

		if c.shouldRetry(resp.StatusCode) {
			lastErr = fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, string(respBody))
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, attempt + 1, fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, string(respBody))
		}

		var orResp openRouterResponse
		if err := json.Unmarshal(respBody, &orResp); err != nil {
			return nil, attempt + 1, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		// API-level error in a 200 body.
		if orResp.Error != nil {
			return nil, attempt + 1, fmt.Errorf("OpenRouter API error: %s", orResp.Error.Message)
		}

		return &orResp, attempt + 1, nil
	}

	return nil, c.maxRetries, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// shouldRetry returns true for status codes that should be retried.
func (c *OpenRouterClient) shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests:
		return true
	case 520, 521, 522, 523, 524: // Cloudflare errors
		return true
	default:
		return statusCode >= 500
	}
}

// backoff sleeps with exponential backoff, respecting context cancellation.
func (c *OpenRouterClient) backoff(ctx context.Context, attempt int) {
	delay := c.retryDelay * time.Duration(1<<attempt)
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
