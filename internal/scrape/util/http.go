package util

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
)

const UserAgent = "JobSearch/1.0 (+local)"

// maxBody bounds how much of an upstream response is read.
const maxBody = 16 << 20

// Client is the HTTP plumbing every adapter shares: user agent, per-host
// limiter, and mapping of transport/status/decode failures to AdapterError.
type Client struct {
	Source  domain.SourceID
	HC      *http.Client
	Limiter *HostLimiter
	Now     func() time.Time
}

func NewClient(src domain.SourceID, hc *http.Client, limiter *HostLimiter) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{Source: src, HC: hc, Limiter: limiter, Now: time.Now}
}

func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.NewError(c.Source, types.KindUnreachable, err)
	}
	return c.doJSON(req, headers, out)
}

func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, headers map[string]string, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return types.NewError(c.Source, types.KindMalformed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(b))
	if err != nil {
		return types.NewError(c.Source, types.KindUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, headers, out)
}

func (c *Client) doJSON(req *http.Request, headers map[string]string, out any) error {
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(io.LimitReader(res.Body, maxBody)).Decode(out); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return types.NewError(c.Source, types.KindTimeout, ctxErr)
		}
		return types.NewError(c.Source, types.KindMalformed, fmt.Errorf("decode: %w", err))
	}
	return nil
}

// Do waits on the limiter, sends req and returns the response only for 2xx.
// The caller closes the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	if err := c.Limiter.WaitURL(ctx, req.URL.String()); err != nil {
		return nil, types.NewError(c.Source, types.KindTimeout, err)
	}

	res, err := c.HC.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return res, nil
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	return nil, c.StatusError(res)
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return types.NewError(c.Source, types.KindTimeout, ctx.Err())
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return types.NewError(c.Source, types.KindTimeout, err)
	}
	return types.NewError(c.Source, types.KindUnreachable, err)
}

// StatusError maps a non-2xx response to an AdapterError.
func (c *Client) StatusError(res *http.Response) error {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	err := fmt.Errorf("status %d", res.StatusCode)
	retryAfter := ParseRetryAfter(res.Header.Get("Retry-After"), now())

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return types.RateLimited(c.Source, retryAfter, err)
	case res.StatusCode == http.StatusServiceUnavailable && res.Header.Get("Retry-After") != "":
		return types.RateLimited(c.Source, retryAfter, err)
	case res.StatusCode == http.StatusGatewayTimeout || res.StatusCode == http.StatusRequestTimeout:
		return types.NewError(c.Source, types.KindTimeout, err)
	default:
		return types.NewError(c.Source, types.KindUnreachable, err)
	}
}

// ParseRetryAfter accepts delta-seconds or an HTTP-date. Unknown → 0.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
