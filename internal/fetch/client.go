package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"medals/internal"
)

type Client struct {
	http    *resty.Client
	limiter *RateLimiter
}

type Page struct {
	URL          string
	Body         []byte
	ETag         string
	LastModified string
}

func NewClient(userAgent string, timeout time.Duration, requestsPerSecond int) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	return &Client{http: rc, limiter: NewRateLimiter(requestsPerSecond)}
}

// Get downloads url. Any transport error or non-2xx status is an ErrFetchFailure.
func (c *Client) Get(ctx context.Context, url string) (Page, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return Page{}, err
	}
	return Page{
		URL:          url,
		Body:         resp.Body(),
		ETag:         resp.Header().Get("ETag"),
		LastModified: resp.Header().Get("Last-Modified"),
	}, nil
}

// Headers probes url with HEAD and falls back to GET when HEAD fails.
func (c *Client) Headers(ctx context.Context, url string) (http.Header, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err == nil {
		return resp.Header(), nil
	}
	resp, err = c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	return resp.Header(), nil
}

func (c *Client) do(ctx context.Context, method, url string) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", internal.ErrFetchFailure, method, url, err)
	}

	resp, err := c.http.R().SetContext(ctx).Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", internal.ErrFetchFailure, method, url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s %s: status=%d", internal.ErrFetchFailure, method, url, resp.StatusCode())
	}
	return resp, nil
}
