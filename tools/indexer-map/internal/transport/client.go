package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
)

const (
	UserAgent = "indexer-map/1.0"

	DefaultTimeout = 30 * time.Second
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// RetryPolicy controls how many times a failed request is re-sent. The zero
// value performs exactly one attempt.
type RetryPolicy struct {
	MaxRetries int

	// BackOff defaults to an exponential backoff.
	BackOff backoff.BackOff
}

func (p RetryPolicy) options() []backoff.RetryOption {
	b := p.BackOff
	if b == nil {
		b = backoff.NewExponentialBackOff()
	}
	tries := uint(1)
	if p.MaxRetries > 0 {
		tries += uint(p.MaxRetries)
	}
	return []backoff.RetryOption{backoff.WithBackOff(b), backoff.WithMaxTries(tries)}
}

// Request describes a single JSON exchange.
type Request struct {
	Operation string
	Method    string
	URL       string

	// Body is JSON-encoded when non-nil.
	Body any
}

// DoJSON sends the request and decodes a 200 response body into out. Transport
// and status failures are retried according to policy; decode failures are not.
func DoJSON(ctx context.Context, log *slog.Logger, client HTTPClient, policy RetryPolicy, r Request, out any) error {
	var payload []byte
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return NewError(ErrorKindConfig, r.Operation, "failed to encode request body", err)
		}
		payload = b
	}

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			log.Warn("Request failed, retrying", "operation", r.Operation, "url", r.URL, "attempt", attempt)
		}
		return do(ctx, client, r, payload)
	}, policy.options()...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return NewShapeError(r.Operation, "failed to decode response", err)
	}
	return nil
}

func do(ctx context.Context, client HTTPClient, r Request, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, reqBody)
	if err != nil {
		return nil, backoff.Permanent(NewError(ErrorKindConfig, r.Operation, "failed to create request", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewTransportError(r.Operation, fmt.Sprintf("%s %s", r.Method, r.URL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewStatusError(r.Operation, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(r.Operation, "failed to read response body", err)
	}
	return body, nil
}
