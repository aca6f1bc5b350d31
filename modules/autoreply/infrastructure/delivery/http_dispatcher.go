package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

type HTTPDispatcherConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// HTTPDispatcher posts outbound messages to the external transport
// gateway. Transient failures are retried with linear backoff.
type HTTPDispatcher struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewHTTPDispatcher(cfg HTTPDispatcherConfig) *HTTPDispatcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDispatcher{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendResponse struct {
	DeliveryID string `json:"delivery_id"`
}

func (d *HTTPDispatcher) Send(ctx context.Context, destination, text string) (string, error) {
	payload, err := json.Marshal(sendRequest{To: destination, Text: text})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * baseDelay):
			}
		}

		id, err := d.sendOnce(ctx, payload)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	return "", errors.Wrap(lastErr, "delivery failed")
}

func (d *HTTPDispatcher) sendOnce(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("transport returned status %d", resp.StatusCode)
	}

	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.DeliveryID, nil
}
