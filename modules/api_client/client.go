package api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vk/fixturegrid/internal/ctxlog"
	"github.com/vk/fixturegrid/internal/retry"
)

// transientStatuses are retried when the client has a retry policy.
var transientStatuses = []int{
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, strings.TrimSpace(e.Body))
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding JSON response: %w", err)
	}
	return nil
}

// Client issues requests against a base URL.
type Client struct {
	http    *http.Client
	baseURL string
	policy  retry.Policy
}

// NewClient returns a client resolving paths against baseURL. Transient
// statuses are retried according to policy.
func NewClient(hc *http.Client, baseURL string, policy retry.Policy) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
	}
}

// BaseURL returns the URL paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request with an optional JSON body and reads the response.
// Responses with a transient status are retried; the last one is returned
// when the attempts run out.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}
	url := c.baseURL + path
	logger := ctxlog.FromContext(ctx)

	var last *Response
	resp, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*Response, error) {
		resp, err := c.send(ctx, method, url, payload)
		if err != nil {
			last = nil
			return nil, err
		}
		if slices.Contains(transientStatuses, resp.Status) {
			last = resp
			logger.Debug("Transient response, retrying.", "method", method, "url", url, "status", resp.Status)
			return nil, &StatusError{Method: method, URL: url, Status: resp.Status, Body: string(resp.Body)}
		}
		return resp, nil
	})
	if err != nil && last != nil && ctx.Err() == nil {
		return last, nil
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.5")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &Response{Status: res.StatusCode, Header: res.Header, Body: data}, nil
}

func (c *Client) expectOK(ctx context.Context, method, path string, body any) (*Response, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &StatusError{Method: method, URL: c.baseURL + path, Status: resp.Status, Body: string(resp.Body)}
	}
	return resp, nil
}

// GetJSON fetches path and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.expectOK(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return resp.JSON(out)
}

// PostJSON posts in as JSON and decodes a 2xx JSON body into out, when out
// is not nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	resp, err := c.expectOK(ctx, http.MethodPost, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.JSON(out)
}

// GetDocument fetches path and parses a 2xx body as HTML.
func (c *Client) GetDocument(ctx context.Context, path string) (*goquery.Document, error) {
	resp, err := c.expectOK(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", path, err)
	}
	return doc, nil
}
