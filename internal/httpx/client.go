// Package httpx centralizes the retry-with-backoff-and-jitter HTTP client
// shared by every vendor client, replacing bespoke per-vendor retry loops
// with one helper.
package httpx

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryableStatus is the set of HTTP status codes that trigger a retry
// rather than an immediate error, per the error-kind table for vendor
// fetch failures.
var RetryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client wraps *http.Client with bounded retry/backoff/jitter.
type Client struct {
	HTTP       *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// New constructs a Client with sane defaults: 3 retries, 250ms base delay
// doubling up to 4s.
func New() *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: 15 * time.Second},
		MaxRetries: 3,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   4 * time.Second,
	}
}

// Do executes req, retrying on RetryableStatus responses or transport
// errors with exponential backoff plus jitter, up to MaxRetries retries
// after the first attempt.
// The caller owns closing the returned response body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		resp, err := c.HTTP.Do(req.WithContext(ctx))
		if err == nil && !RetryableStatus[resp.StatusCode] {
			return resp, nil
		}
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode}
		} else {
			lastErr = err
		}

		if attempt == c.MaxRetries {
			break
		}

		delay := c.backoff(attempt)
		log.Debug().Int("attempt", attempt+1).Dur("delay", delay).Str("url", req.URL.String()).Msg("retrying vendor request")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.BaseDelay << uint(attempt)
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	return d/2 + jitter
}

// StatusError wraps a RetryableStatus response that exhausted retries.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return http.StatusText(e.StatusCode)
}
