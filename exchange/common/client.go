package common

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/cexkit/cexkit"
)

// Client is the REST plumbing every adapter shares: one resty client per
// exchange with env-driven timeouts, User-Agent and retry policy.
type Client struct {
	Exchange string
	R        *resty.Client
	Log      *zap.Logger

	nonce atomic.Int64
}

func New(exchange, base string) *Client {
	return NewWith(exchange, base, DefaultOptionsFromEnv(), nil)
}

func NewWith(exchange, base string, opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	r := resty.New().
		SetBaseURL(base).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.BackoffMin).
		SetRetryMaxWaitTime(opts.BackoffMax).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			if res != nil && res.Request != nil {
				// a replayed POST could double-place an order
				if res.Request.Method != http.MethodGet {
					return false
				}
				// some venues mutate state via GET; they opt out per request
				if !retryable(res.Request.Context()) {
					return false
				}
			}
			if err != nil {
				var ne net.Error
				if errors.As(err, &ne) {
					return ne.Timeout()
				}
				return !errors.Is(err, context.Canceled)
			}
			return res.StatusCode() == http.StatusTooManyRequests ||
				(res.StatusCode() >= 500 && res.StatusCode() <= 599)
		})
	r.SetLogger(log.Sugar())
	return &Client{Exchange: exchange, R: r, Log: log}
}

type noRetryKey struct{}

// WithoutRetry marks every request made under ctx as non-replayable.
// Query-signed venues run order placement and withdrawal over GET, so
// the method alone cannot tell a safe request from a mutating one.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retryable(ctx context.Context) bool {
	v, _ := ctx.Value(noRetryKey{}).(bool)
	return !v
}

// Response keeps the raw body so adapters can run their own error
// dispatch on non-success payloads.
type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

func (r *Response) Decode(out any) error { return json.Unmarshal(r.Body, out) }

// Get issues a GET. path may be absolute, which bypasses the base URL —
// query-signing venues (Bittrex) sign the full URL and need it sent
// byte-identical.
func (c *Client) Get(ctx context.Context, path string, query url.Values, headers map[string]string) (*Response, error) {
	req := c.R.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if headers != nil {
		req.SetHeaders(headers)
	}
	res, err := req.Get(path)
	if err != nil {
		return nil, c.transportError(err)
	}
	c.Log.Debug("request", zap.String("exchange", c.Exchange),
		zap.String("method", "GET"), zap.String("path", path), zap.Int("status", res.StatusCode()))
	return &Response{Status: res.StatusCode(), Body: res.Body()}, nil
}

func (c *Client) Post(ctx context.Context, path string, headers map[string]string, body any) (*Response, error) {
	req := c.R.R().SetContext(ctx)
	if headers != nil {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	res, err := req.Post(path)
	if err != nil {
		return nil, c.transportError(err)
	}
	c.Log.Debug("request", zap.String("exchange", c.Exchange),
		zap.String("method", "POST"), zap.String("path", path), zap.Int("status", res.StatusCode()))
	return &Response{Status: res.StatusCode(), Body: res.Body()}, nil
}

func (c *Client) transportError(err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return cexkit.NewError(cexkit.ErrRequestTimeout, c.Exchange, err.Error())
	case errors.As(err, &ne) && ne.Timeout():
		return cexkit.NewError(cexkit.ErrRequestTimeout, c.Exchange, err.Error())
	default:
		return cexkit.NewError(cexkit.ErrExchangeNotAvailable, c.Exchange, err.Error())
	}
}

// Nonce returns a strictly increasing millisecond nonce, monotonic per
// client even when the clock stalls.
func (c *Client) Nonce() int64 {
	for {
		now := time.Now().UnixMilli()
		last := c.nonce.Load()
		if now <= last {
			now = last + 1
		}
		if c.nonce.CompareAndSwap(last, now) {
			return now
		}
	}
}
