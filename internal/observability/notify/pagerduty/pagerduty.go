// Package pagerduty publishes poll failure events via PagerDuty's Events
// API v2.
package pagerduty

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

	"github.com/talentwire/autoapply/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Timeout    time.Duration
	RetryLimit int
	Endpoint   string
	Client     *http.Client
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	retryLimit int
	endpoint   string
	client     *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient constructs a PagerDuty events client. Callers must provide a
// routing key.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	source := strings.TrimSpace(cfg.Source)
	if source == "" {
		source = "autoapply"
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	return &Client{
		routingKey: key,
		source:     source,
		retryLimit: max(cfg.RetryLimit, 0),
		endpoint:   endpoint,
		client:     hc,
	}, nil
}

// SendPollFailure submits a trigger event to PagerDuty.
func (c *Client) SendPollFailure(ctx context.Context, payload notify.PollFailurePayload) error {
	body, err := json.Marshal(c.buildEvent(payload))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.submit(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}

func (c *Client) buildEvent(payload notify.PollFailurePayload) map[string]any {
	severity := strings.ToLower(strings.TrimSpace(payload.Severity))
	if severity == "" {
		severity = notify.SeverityCritical
	}
	occurredAt := payload.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"error":                payload.Error,
		"error_class":          payload.ErrorClass,
		"consecutive_failures": payload.Consecutive,
	}
	for k, v := range payload.Metadata {
		custom[k] = v
	}

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":        "auto-apply poll cycle failed: " + payload.Error,
			"source":         c.source,
			"severity":       severity,
			"component":      "poller",
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}

func (c *Client) submit(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build pagerduty request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post pagerduty event: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("pagerduty status %d", resp.StatusCode)
	}
	return nil
}
