// Package slack provides an HTTP client for the Slack Web API.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/slackfocus/slackfocus/internal/observability"
	"github.com/slackfocus/slackfocus/internal/output"
	"github.com/slackfocus/slackfocus/internal/version"
)

const (
	maxRetries = 5
	baseDelay  = 1 * time.Second
	maxJitter  = 100 * time.Millisecond
)

// TokenSource supplies the bearer token for API requests.
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for the Slack Web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	collector  *observability.SessionCollector
	verbose    bool

	// sleep waits out a retry delay; injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new API client.
func NewClient(baseURL string, tokens TokenSource, collector *observability.SessionCollector) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		tokens:    tokens,
		collector: collector,
		sleep:     sleepContext,
	}
}

// SetVerbose enables verbose request logging to stderr.
func (c *Client) SetVerbose(v bool) {
	c.verbose = v
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Call performs a Web API method call (e.g. "stars.list") and unmarshals the
// response into out. Retryable failures (network, gateway errors, 429) are
// retried up to maxRetries attempts; a 429 waits the service's Retry-After
// hint, everything else backs off exponentially with jitter.
func (c *Client) Call(ctx context.Context, method string, params url.Values, out any) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		data, err := c.singleRequest(ctx, method, params, attempt)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to parse %s response: %w", method, err)
			}
			return nil
		}

		apiErr, ok := err.(*output.Error)
		if !ok || !apiErr.Retryable {
			return err
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}

		delay := c.retryDelay(apiErr, attempt)
		if c.verbose {
			fmt.Printf("[slackfocus] Retry %d/%d in %v: %s\n", attempt, maxRetries, delay, err)
		}
		if c.collector != nil {
			c.collector.RecordRetry()
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}

	if apiErr := output.AsError(lastErr); apiErr.Code == output.CodeRateLimit {
		return lastErr
	}
	return fmt.Errorf("%s failed after %d attempts: %w", method, maxRetries, lastErr)
}

// CallRaw performs a Web API method call and returns the raw response body.
// Used by the api passthrough command.
func (c *Client) CallRaw(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Call(ctx, method, params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// retryDelay returns the wait before the next attempt. A rate-limited
// response is honored exactly; other retryable failures back off
// exponentially with jitter.
func (c *Client) retryDelay(apiErr *output.Error, attempt int) time.Duration {
	if apiErr.Code == output.CodeRateLimit {
		if apiErr.RetryAfter > 0 {
			return time.Duration(apiErr.RetryAfter) * time.Second
		}
		return baseDelay
	}

	delay := baseDelay * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(maxJitter))) //nolint:gosec // G404: jitter doesn't need crypto rand
	return delay + jitter
}

func (c *Client) singleRequest(ctx context.Context, method string, params url.Values, attempt int) (json.RawMessage, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/" + method
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	if c.verbose {
		fmt.Printf("[slackfocus] GET %s (attempt %d)\n", method, attempt)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(method, start, 0, err)
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.record(method, start, resp.StatusCode, nil)
		return nil, output.ErrRateLimit(retryAfter)

	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.record(method, start, resp.StatusCode, err)
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		c.record(method, start, resp.StatusCode, nil)

		// Slack signals most failures inside a 200 envelope.
		var env apiEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
		}
		if !env.OK {
			return nil, envelopeError(env.Error, resp.Header)
		}
		return body, nil

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		c.record(method, start, resp.StatusCode, nil)
		return nil, output.ErrAuth("Slack rejected the token")

	case resp.StatusCode >= 500:
		c.record(method, start, resp.StatusCode, nil)
		return nil, &output.Error{
			Code:       output.CodeAPI,
			Message:    fmt.Sprintf("Slack server error (%d)", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Retryable:  true,
		}

	default:
		c.record(method, start, resp.StatusCode, nil)
		return nil, output.ErrAPI(resp.StatusCode, fmt.Sprintf("%s failed (HTTP %d)", method, resp.StatusCode))
	}
}

// envelopeError maps an ok:false envelope to a structured error.
func envelopeError(code string, headers http.Header) error {
	switch code {
	case "ratelimited":
		return output.ErrRateLimit(parseRetryAfter(headers.Get("Retry-After")))
	case "invalid_auth", "not_authed", "token_revoked", "token_expired":
		return output.ErrAuth("Slack rejected the token: " + code)
	default:
		return output.ErrAPI(200, "Slack API error: "+code)
	}
}

func (c *Client) record(method string, start time.Time, status int, err error) {
	if c.collector == nil {
		return
	}
	c.collector.RecordRequest(observability.RequestMetrics{
		Method:   method,
		Duration: time.Since(start),
		Status:   status,
		Error:    err,
	})
}

// parseRetryAfter parses the Retry-After header value.
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return seconds
	}
	return 0
}
