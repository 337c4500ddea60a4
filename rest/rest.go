// Package rest posts JSON to the Hyperliquid HTTP API.
package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/alinkon0207/hlsign/constants"
	"github.com/go-resty/resty/v2"
	"github.com/samber/mo"
)

// ClientInterface is what the exchange and info clients need from HTTP.
type ClientInterface interface {
	Post(ctx context.Context, path string, body any, result any) error
}

var _ ClientInterface = (*Client)(nil)

type Config struct {
	// BaseUrl defaults to the mainnet API.
	BaseUrl string
	// Timeout in seconds per request. Zero leaves only the caller's context.
	Timeout uint
}

type Client struct {
	baseURL string
	timeout mo.Option[time.Duration]
	http    *resty.Client
}

func New(c Config) *Client {
	baseURL := c.BaseUrl
	if baseURL == "" {
		baseURL = constants.MAINNET_API_URL
	}

	timeout := mo.None[time.Duration]()
	if c.Timeout > 0 {
		timeout = mo.Some(time.Duration(c.Timeout) * time.Second)
	}

	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends body to path and decodes a 2xx reply into result, which may be
// nil. 4xx replies are *ClientError, 5xx *ServerError.
func (c *Client) Post(ctx context.Context, path string, body any, result any) error {
	if d, ok := c.timeout.Get(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	req := c.http.R().SetContext(ctx).SetBody(body)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}

	return handleException(resp)
}
