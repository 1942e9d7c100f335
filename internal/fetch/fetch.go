// Package fetch performs the outbound HTTP requests the extraction cascade
// depends on: page/JSON fetches with browser-like headers and, when a
// session credential is configured, an authenticated cookie.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches upstream bodies. It satisfies extract.Fetcher.
type Client struct {
	http   *http.Client
	agents *agentPool
	token  string
}

// maxBodyBytes caps how much of an upstream body is read into memory; post
// pages and JSON payloads are far below this, media files must go through
// the proxy path instead.
const maxBodyBytes = 8 << 20

func NewClient(timeout time.Duration, sessionToken string) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		agents: newAgentPool(time.Now().UnixNano()),
		token:  sessionToken,
	}
}

// Fetch retrieves url and returns its body as a string. Non-2xx statuses
// are errors; the cascade treats any error as "this variant found nothing".
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Get performs a plain GET for the proxy path and returns the raw response;
// the caller owns the body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.agents.pick())
	return c.http.Do(req)
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", c.agents.pick())
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.instagram.com/")
	if c.token != "" {
		req.Header.Set("Cookie", "sessionid="+c.token)
	}
}
