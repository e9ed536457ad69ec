package saavn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yhkl-dev/SaavnCLI/apperr"
	"github.com/yhkl-dev/SaavnCLI/logger"
)

type Option func(*Client)

// WithRetry sets how many attempts a request gets and the base backoff
// between them.
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = backoff
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HttpClient = hc
	}
}

func Init(baseUrl string, timeout time.Duration, pageSize int, opts ...Option) *Client {
	client := &Client{
		BaseURL:     strings.TrimRight(baseUrl, "/"),
		PageSize:    pageSize,
		HttpClient:  &http.Client{Timeout: timeout},
		maxRetries:  defaultMaxRetries,
		baseBackoff: time.Duration(defaultBackoffMs) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) buildParams(extraParams map[string]string) url.Values {
	params := url.Values{}
	for k, v := range extraParams {
		if v == "" {
			continue
		}
		params.Add(k, v)
	}
	return params
}

// get performs a GET against path and decodes the envelope's data into out.
// Failures come back as *apperr.Error; a cancelled ctx comes back as the
// context error itself.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	requestUrl := fmt.Sprintf("%s/%s?%s", c.BaseURL, path, params.Encode())
	logger.Debug("saavn %s: GET %s", op, requestUrl)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return errors.Wrapf(err, "saavn %s: build request", op)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperr.Network(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Warn("saavn %s: unexpected status %d", op, resp.StatusCode)
		return apperr.API(op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperr.Network(op, errors.Wrap(err, "read response"))
	}

	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apperr.Decode(op, err)
	}
	if !envelope.Success {
		logger.Warn("saavn %s: API returned success=false", op)
		return apperr.API(op, 0)
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperr.Decode(op, err)
	}
	return nil
}
