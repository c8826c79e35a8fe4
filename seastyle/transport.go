// Package seastyle is the client for the Sea-Style reservation service.
// The upstream API is unstable and undocumented, so every fetch runs an
// ordered chain of request strategies and normalizes whatever the first
// working one returns.
package seastyle

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// DefaultBaseURL is the Sea-Style origin. Point it at a relay instead
// when the upstream must be reached through one.
const DefaultBaseURL = "https://sea-style-m.yamaha-motor.co.jp"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Transport executes one HTTP request. *http.Client satisfies it; tests
// substitute fakes.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches and normalizes availability data.
type Client struct {
	BaseURL   string
	Transport Transport
	UserAgent string
}

// New creates a client against the Sea-Style origin with a cookie-jar
// HTTP client, the same setup the municipal scrapers use.
func New() *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: DefaultBaseURL,
		Transport: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		UserAgent: defaultUserAgent,
	}
}

// Response is the captured upstream reply.
type Response struct {
	Status int
	URL    string
	Header http.Header
	Body   []byte
}

// Text returns the body as trimmed text.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Body))
}

// get issues a GET and requires a successful, non-empty reply.
func (c *Client) get(ctx context.Context, path string) (*Response, error) {
	return c.roundTrip(ctx, http.MethodGet, path, nil, "")
}

// postJSON issues a JSON POST and requires a successful, non-empty reply.
func (c *Client) postJSON(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.roundTrip(ctx, http.MethodPost, path, body, "application/json")
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, contentType string) (*Response, error) {
	url := c.BaseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Transport.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{URL: url, Err: err}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{URL: finalURL, Status: resp.StatusCode}
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, &EmptyResponseError{URL: finalURL}
	}

	return &Response{
		Status: resp.StatusCode,
		URL:    finalURL,
		Header: resp.Header,
		Body:   payload,
	}, nil
}
