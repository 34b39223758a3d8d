package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"newsdesk/internal/core"
)

// authHeader carries the shared secret, per Make.com webhook convention.
const authHeader = "x-make-apikey"

// Dispatcher posts finalized payloads to the configured webhook
// endpoints. Single best-effort attempt per call: no retry, no queueing.
type Dispatcher struct {
	httpClient *http.Client
}

// NewDispatcher creates a webhook dispatcher.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send POSTs the payload as JSON to the webhook URL. The auth token is
// attached via the shared-secret header and omitted when empty. Non-2xx
// responses surface the status and best-effort body text.
func (d *Dispatcher) Send(ctx context.Context, payload core.WebhookPayload, webhookURL, authToken string) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set(authHeader, authToken)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if isLikelyOriginRestriction(err) {
			return fmt.Errorf("network error: the request could not be completed. This is often due to a cross-origin or firewall restriction on the destination server. Please ensure the webhook at %s is configured to accept requests from this application's origin: %w", webhookURL, err)
		}
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody := "No additional error info from webhook."
		if body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil && len(body) > 0 {
			errorBody = string(body)
		}
		return fmt.Errorf("webhook request failed with status %d. Body: %s", resp.StatusCode, errorBody)
	}

	return nil
}

// isLikelyOriginRestriction recognizes transport failures that in
// practice mean the destination refused the connection outright, the
// closest server-side analog of a browser CORS rejection.
func isLikelyOriginRestriction(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
