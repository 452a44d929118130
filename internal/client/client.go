// Package client talks to the answering service over HTTP. It is the
// transport used by the terminal chat.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/zhouzirui/vetchat/internal/model/chat"
)

const (
	DefaultTimeout           = 30 * time.Second
	DefaultMaxFeedbackLength = 1000
	maxErrorBody             = 512
)

var (
	ErrEmptyFeedback   = errors.New("feedback is empty")
	ErrFeedbackTooLong = errors.New("feedback is too long")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL           string
	http              *retryablehttp.Client
	maxFeedbackLength int
}

type Option func(*Client)

// WithRetries sets how often idempotent failures (connection errors, 502,
// 503, 504) are retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait bounds the backoff between retries.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = min
		c.http.RetryWaitMax = max
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

func WithMaxFeedbackLength(n int) Option {
	return func(c *Client) { c.maxFeedbackLength = n }
}

func New(baseURL string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = DefaultTimeout
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = zerologAdapter{}

	c := &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		http:              rc,
		maxFeedbackLength: DefaultMaxFeedbackLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AskQuestion posts query to /api/ask.
func (c *Client) AskQuestion(ctx context.Context, query string) (chat.Answer, error) {
	var answer chat.Answer
	if err := c.postJSON(ctx, "/api/ask", chat.AskRequest{Query: query}, &answer, false); err != nil {
		return chat.Answer{}, err
	}
	return answer, nil
}

// SubmitFeedback posts text to /api/feedback. A 400 carrying a feedback
// result is returned as that result, not as an error.
func (c *Client) SubmitFeedback(ctx context.Context, text string) (chat.FeedbackResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.FeedbackResult{}, ErrEmptyFeedback
	}
	if len([]rune(text)) > c.maxFeedbackLength {
		return chat.FeedbackResult{}, ErrFeedbackTooLong
	}

	var result chat.FeedbackResult
	if err := c.postJSON(ctx, "/api/feedback", chat.FeedbackRequest{Feedback: text}, &result, true); err != nil {
		return chat.FeedbackResult{}, err
	}
	return result, nil
}

// Translations fetches the UI text table for language.
func (c *Client) Translations(ctx context.Context, language string) (map[string]string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/translations?language="+url.QueryEscape(language), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	table := map[string]string{}
	if err := c.do(req, &table, false); err != nil {
		return nil, err
	}
	return table, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any, decodeBadRequest bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, decodeBadRequest)
}

func (c *Client) do(req *retryablehttp.Request, out any, decodeBadRequest bool) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok && !(decodeBadRequest && resp.StatusCode == http.StatusBadRequest) {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(truncate(string(data), maxErrorBody))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "malformed response")
	}
	return nil
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}
