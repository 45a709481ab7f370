// Package inference talks to the classifier sidecar: a containerized
// inference server that loads the multi-label bias-type model and scores one
// text unit per request. The process owns the sidecar's lifecycle through
// ContainerManager and scores units through Client.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/biaslens/biaslens/internal/analysis"
)

// ErrUnhealthy is returned when the sidecar health check fails.
var ErrUnhealthy = errors.New("classifier health check failed")

// Client is an HTTP client for the classifier sidecar.
type Client struct {
	url        string
	httpClient *http.Client
	maxRetries uint
	retryDelay time.Duration
}

// NewClient creates a new classifier client.
func NewClient(url string) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		retryDelay: 200 * time.Millisecond,
	}
}

// Name returns the scorer identifier.
func (c *Client) Name() string {
	return "classifier"
}

// predictRequest is the sidecar's scoring request.
type predictRequest struct {
	Inputs string `json:"inputs"`
}

// predictScore is one label score in the sidecar's response.
type predictScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Score returns the sigmoid score for every label head on one text unit.
// Scores are unfiltered; threshold policy belongs to the analyzer layer.
// Transient transport and 5xx failures are retried.
func (c *Client) Score(ctx context.Context, text string) ([]analysis.LabelScore, error) {
	body, err := json.Marshal(predictRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	var wire []predictScore
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/predict", bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("predict request failed: %w", err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read predict response: %w", err)
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, string(respBody))
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, string(respBody)))
			}
			if err := json.Unmarshal(respBody, &wire); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to unmarshal predict response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	scores := make([]analysis.LabelScore, 0, len(wire))
	for _, s := range wire {
		scores = append(scores, analysis.LabelScore{
			Label:      s.Label,
			Confidence: s.Score,
			LabelID:    labelID(s.Label),
		})
	}
	return scores, nil
}

// HealthCheck checks if the sidecar is up and the model is loaded.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// URL returns the sidecar base URL.
func (c *Client) URL() string {
	return c.url
}

// labelID resolves a label name to its model head index, or -1 for labels
// the sidecar reports that this build does not know about.
func labelID(label string) int {
	for i, l := range analysis.ClassifierLabels {
		if l == label {
			return i
		}
	}
	return -1
}
