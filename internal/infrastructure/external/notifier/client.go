// Package notifier implements the HTTP client that delivers portal
// notifications to the external notification service. Delivery is
// best-effort: the worker logs failures and moves on, so this client
// concentrates all the resilience machinery (retries, circuit breaker)
// in one place.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/collab-hub/collab-portal/config"
	"github.com/collab-hub/collab-portal/internal/domain/notification"
	"github.com/collab-hub/collab-portal/pkg/circuitbreaker"
	"github.com/collab-hub/collab-portal/pkg/logger"
	"github.com/collab-hub/collab-portal/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client posts notifications to the configured sink endpoint. It
// implements notification.Sink so the worker can drain the queue
// straight into it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
}

// NewClient creates a notifier client from config.
func NewClient(cfg config.NotifierConfig, log *logger.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breaker := circuitbreaker.NotifierBreaker(cfg.BreakerTimeout, func(name string, from, to circuitbreaker.State) {
		log.Warn("notifier breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()))
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.SinkURL,
		apiKey:     cfg.APIKey,
		retrier:    retry.NotifierRetrier(cfg.MaxRetries, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		breaker:    breaker,
		log:        log,
	}
}

var _ notification.Sink = (*Client)(nil)

// Send delivers one notification. Retries transient failures with
// backoff; the breaker short-circuits while the sink is down so queue
// draining degrades to fast failures instead of piling up timeouts.
func (c *Client) Send(ctx context.Context, n notification.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return retry.Permanent(fmt.Errorf("notifier: failed to encode notification: %w", err))
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.post(ctx, body)
		})
	})
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("notifier: failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("notifier: request failed: %w", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		// Transient; the retrier backs off and tries again.
		return retry.Retryable(fmt.Errorf("notifier: sink returned %d", resp.StatusCode))
	default:
		// Client errors will not improve on retry.
		return retry.Permanent(fmt.Errorf("notifier: sink rejected notification with %d", resp.StatusCode))
	}
}
