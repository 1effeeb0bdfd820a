package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultMaxRetries = 3

// retryInterval is the first back-off delay. Later delays grow exponentially.
var retryInterval = time.Second

type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return "rate limited" }

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError reports whether err, or any error it wraps, is an
// authentication failure from a provider.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// isRetryable reports whether a request that failed with err may succeed if
// sent again.
func isRetryable(err error) bool {
	var rl *rateLimitError
	var se *serverError
	return errors.As(err, &rl) || errors.As(err, &se)
}

func newBackOff(ctx context.Context, maxRetries int) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// retryWithBackoff calls fn until it succeeds, returns a non-retryable error,
// or maxRetries retries have been spent.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	return backoff.Retry(func() error {
		err := fn()
		if err == nil || isRetryable(err) {
			var rl *rateLimitError
			if errors.As(err, &rl) && rl.retryAfter > 0 {
				select {
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				case <-time.After(rl.retryAfter):
				}
			}
			return err
		}
		return backoff.Permanent(err)
	}, newBackOff(ctx, maxRetries))
}

// postJSON sends body as JSON to url and decodes a 200 response into out.
// Rate limits and server errors are retried with exponential back-off.
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	return retryWithBackoff(ctx, defaultMaxRetries, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		for k, v := range header {
			httpReq.Header[k] = v
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		switch code := httpResp.StatusCode; {
		case code == http.StatusTooManyRequests:
			return &rateLimitError{retryAfter: parseRetryAfter(httpResp.Header.Get("Retry-After"))}
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return &authError{message: string(respBody)}
		case code >= 500:
			return &serverError{statusCode: code, body: string(respBody)}
		case code != http.StatusOK:
			return fmt.Errorf("API error (status %d): %s", code, string(respBody))
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		return nil
	})
}

// parseRetryAfter reads a Retry-After header given in seconds. Values above
// a minute are capped.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, time.Minute)
}
