package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"apibdd/internal/config"
	"apibdd/pkg/logging"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	maskedValue = "[MASKED]"
	truncMarker = "\n... (truncated)"
)

// Authenticator injects credentials into outgoing requests. Implemented by
// the auth package; declared here so the client does not depend on it.
type Authenticator interface {
	// Apply adds authentication to the request, obtaining credentials first
	// if necessary.
	Apply(ctx context.Context, req *http.Request) error
	// IsAuthenticated reports whether credentials are currently configured.
	IsAuthenticated() bool
}

// Exchange is a capture of one request/response pair, already masked and
// truncated according to the logging configuration. Report writers consume
// these.
type Exchange struct {
	Method          string            `json:"method"`
	Endpoint        string            `json:"endpoint"`
	URL             string            `json:"url"`
	RequestHeaders  map[string]string `json:"request_headers,omitempty"`
	RequestBody     string            `json:"request_body,omitempty"`
	StatusCode      int               `json:"status_code"`
	Status          string            `json:"status"`
	Duration        time.Duration     `json:"duration"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	ResponseBody    string            `json:"response_body,omitempty"`
}

// CaptureFunc receives every completed exchange.
type CaptureFunc func(Exchange)

// Client is the harness HTTP client. It joins endpoints onto the environment
// base URL, applies default headers and authentication, and captures
// exchanges for reporting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	logging    config.LoggingConfig
	sensitive  map[string]struct{}

	mu      sync.RWMutex
	auth    Authenticator
	capture CaptureFunc
}

// New creates a Client for the given environment.
func New(environment config.Environment, loggingCfg config.LoggingConfig) *Client {
	transport := http.DefaultTransport
	if environment.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	sensitive := make(map[string]struct{}, len(loggingCfg.SensitiveHeaders))
	for _, name := range loggingCfg.SensitiveHeaders {
		sensitive[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	headers := map[string]string{
		"Content-Type": contentTypeJSON,
		"Accept":       contentTypeJSON,
	}
	for key, value := range environment.Headers {
		headers[key] = value
	}

	timeout := environment.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	logging.Info("client", "API client initialized with base URL: %s", environment.BaseURL)

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL:   strings.TrimRight(environment.BaseURL, "/"),
		headers:   headers,
		logging:   loggingCfg,
		sensitive: sensitive,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthenticator installs the authenticator used for subsequent requests.
func (c *Client) SetAuthenticator(auth Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = auth
}

// SetCapture installs the exchange capture callback.
func (c *Client) SetCapture(fn CaptureFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capture = fn
}

// IsAuthenticated reports whether an authenticator with credentials is set.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth != nil && c.auth.IsAuthenticated()
}

// NewRequest starts a fluent request builder bound to this client.
func (c *Client) NewRequest() *RequestBuilder {
	return newRequestBuilder(c)
}

// Get performs a GET request against the endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.execute(ctx, http.MethodGet, endpoint, nil, nil, "", nil)
}

// Post performs a POST request with the given body.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.execute(ctx, http.MethodPost, endpoint, body, nil, "", nil)
}

// Put performs a PUT request with the given body.
func (c *Client) Put(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.execute(ctx, http.MethodPut, endpoint, body, nil, "", nil)
}

// Patch performs a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.execute(ctx, http.MethodPatch, endpoint, body, nil, "", nil)
}

// Delete performs a DELETE request against the endpoint.
func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.execute(ctx, http.MethodDelete, endpoint, nil, nil, "", nil)
}

// Head performs a HEAD request against the endpoint.
func (c *Client) Head(ctx context.Context, endpoint string) (*Response, error) {
	return c.execute(ctx, http.MethodHead, endpoint, nil, nil, "", nil)
}

// Options performs an OPTIONS request against the endpoint.
func (c *Client) Options(ctx context.Context, endpoint string) (*Response, error) {
	return c.execute(ctx, http.MethodOptions, endpoint, nil, nil, "", nil)
}

// execute performs the request and captures the exchange.
func (c *Client) execute(ctx context.Context, method, endpoint string, body interface{}, query url.Values, contentType string, extraHeaders map[string]string) (*Response, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		separator := "?"
		if strings.Contains(fullURL, "?") {
			separator = "&"
		}
		fullURL += separator + query.Encode()
	}

	bodyBytes, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body for %s %s: %w", method, endpoint, err)
	}

	var reader io.Reader
	if bodyBytes != nil {
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", method, endpoint, err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.mu.RLock()
	auth := c.auth
	capture := c.capture
	c.mu.RUnlock()

	if auth != nil && auth.IsAuthenticated() {
		if err := auth.Apply(ctx, req); err != nil {
			return nil, fmt.Errorf("apply authentication: %w", err)
		}
	}

	logging.Info("client", "%s %s", method, endpoint)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body for %s %s: %w", method, endpoint, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Duration:   duration,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	logging.Debug("client", "%s %s -> %d in %v", method, endpoint, resp.StatusCode, duration)

	if capture != nil && c.logging.CaptureHTTP {
		capture(c.buildExchange(method, endpoint, fullURL, req.Header, bodyBytes, resp))
	}

	return resp, nil
}

// buildExchange assembles the masked, truncated capture of a request/response
// pair.
func (c *Client) buildExchange(method, endpoint, fullURL string, reqHeaders http.Header, reqBody []byte, resp *Response) Exchange {
	exchange := Exchange{
		Method:     method,
		Endpoint:   endpoint,
		URL:        fullURL,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Duration:   resp.Duration,
	}

	if c.logging.LogHeaders {
		exchange.RequestHeaders = c.maskHeaders(reqHeaders)
		exchange.ResponseHeaders = c.maskHeaders(resp.Headers)
	}
	if c.logging.LogBodies {
		exchange.RequestBody = c.renderBody(reqBody)
		exchange.ResponseBody = c.renderBody(resp.Body)
	}

	return exchange
}

// maskHeaders flattens headers into a map, masking sensitive values.
func (c *Client) maskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for name, values := range headers {
		if _, sensitive := c.sensitive[strings.ToLower(name)]; sensitive {
			masked[name] = maskedValue
			continue
		}
		masked[name] = strings.Join(values, ", ")
	}
	return masked
}

// renderBody pretty-prints JSON bodies when configured and truncates beyond
// the configured maximum.
func (c *Client) renderBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	rendered := string(body)
	if c.logging.PrettyJSON && json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			rendered = buf.String()
		}
	}

	if max := c.logging.MaxBodyLength; max > 0 && len(rendered) > max {
		rendered = rendered[:max] + truncMarker
	}

	return rendered
}

// encodeBody serializes a request body. Byte slices and strings pass through
// unchanged; anything else is marshalled as JSON.
func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case url.Values:
		return []byte(b.Encode()), nil
	default:
		return json.Marshal(body)
	}
}
