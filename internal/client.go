package internal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// DefaultTimeout bounds every outbound call
const DefaultTimeout = 30 * time.Second

// Response is a completed 2xx upstream response
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the body should be decoded as JSON rather than
// parsed as plaintext
func (r *Response) IsJSON() bool {
	if strings.Contains(r.ContentType, "json") {
		return true
	}
	if strings.HasPrefix(r.ContentType, "text/") {
		return false
	}
	trimmed := strings.TrimSpace(string(r.Body))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// Fetcher performs GET requests against the upstream service
type Fetcher interface {
	Get(ctx context.Context, endpoint string, params map[string]string) (*Response, error)
}

// APIClient wraps a Hertz client for the upstream chat log service
type APIClient struct {
	client  *client.Client
	server  string
	timeout time.Duration
	log     Logger
}

// NewAPIClient creates a client for server. A zero timeout means DefaultTimeout.
func NewAPIClient(server string, timeout time.Duration, log Logger) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client:  c,
		server:  normalized,
		timeout: timeout,
		log:     orNop(log),
	}, nil
}

// Server returns the normalized base URL
func (c *APIClient) Server() string {
	return c.server
}

// normalizeServerURL adds a scheme when missing and strips the trailing slash
func normalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", fmt.Errorf("empty server URL")
	}
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", server)
	}

	return strings.TrimSuffix(fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path), "/"), nil
}

// Get issues a GET request. Dial failures, timeouts and non-2xx statuses are
// returned as *TransportError.
func (c *APIClient) Get(ctx context.Context, endpoint string, params map[string]string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Method: consts.MethodGet, Endpoint: endpoint, Err: err}
	}

	uri := c.server + endpoint
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		uri += "?" + query.Encode()
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(uri)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	c.log.Debugf("API request: %s %s %v", consts.MethodGet, endpoint, params)

	if err := c.client.DoTimeout(ctx, req, resp, c.timeout); err != nil {
		c.log.Errorf("API request failed: %s %v", endpoint, err)
		return nil, &TransportError{Method: consts.MethodGet, Endpoint: endpoint, Err: err}
	}

	status := resp.StatusCode()
	c.log.Debugf("API response: %s %d", endpoint, status)
	if status < 200 || status >= 300 {
		body := preview(string(resp.Body()))
		c.log.Errorf("API request failed: %s HTTP %d", endpoint, status)
		return nil, &TransportError{
			Method:   consts.MethodGet,
			Endpoint: endpoint,
			Status:   status,
			Err:      fmt.Errorf("unexpected status, body: %s", body),
		}
	}

	// The response body is recycled on release
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())

	return &Response{
		Status:      status,
		ContentType: string(resp.Header.ContentType()),
		Body:        body,
	}, nil
}
