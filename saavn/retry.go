package saavn

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/SaavnCLI/logger"
)

const (
	defaultMaxRetries = 3
	defaultBackoffMs  = 500
)

// doRequestWithRetry retries transport errors, 429 and 5xx with exponential
// backoff, honouring Retry-After. After the last attempt the final response
// is returned as-is so the caller can map its status.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	maxRetries := c.maxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	baseBackoff := c.baseBackoff
	if baseBackoff < 0 {
		baseBackoff = 0
	}

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "request canceled")
		}

		resp, err := c.HttpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry || attempt == maxRetries-1 || ctx.Err() != nil {
			return resp, err
		}

		attemptNum := attempt + 1
		if err != nil {
			logger.Warn("saavn: retry attempt %d/%d after error: %v", attemptNum, maxRetries, err)
		} else {
			logger.Warn("saavn: retry attempt %d/%d after status %d", attemptNum, maxRetries, resp.StatusCode)
			_ = resp.Body.Close()
		}

		backoff := baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}

		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "request canceled")
	case <-timer.C:
		return nil
	}
}
