package sdk

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// retryable reports whether a response status is worth retrying. A 500 is
// not: it reports a stored record the server cannot map, which a retry will
// not fix.
func retryable(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// doRequestWithRetry performs a GET with exponential backoff. It retries
// network errors and retryable statuses; any other response is returned to
// the caller as is. newReq builds a fresh request for every attempt.
func (c *Client) doRequestWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.RetryAttempts; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.HTTPClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case !retryable(resp.StatusCode) || attempt == c.RetryAttempts:
			return resp, nil
		default:
			lastErr = fmt.Errorf("status code %d", resp.StatusCode)
			drainAndCloseBody(resp)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.RetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.calculateBackoff(attempt)):
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.RetryAttempts+1, lastErr)
}

// calculateBackoff returns a jittered exponential delay for a retry attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.RetryWaitMin) * math.Pow(2, float64(attempt))
	if backoff > float64(c.RetryWaitMax) {
		backoff = float64(c.RetryWaitMax)
	}

	// Full jitter between min and the capped backoff.
	jitter := float64(c.RetryWaitMin) + rand.Float64()*(backoff-float64(c.RetryWaitMin))
	return time.Duration(jitter)
}

// drainAndCloseBody reads and closes the response body to ensure connection reuse.
func drainAndCloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
