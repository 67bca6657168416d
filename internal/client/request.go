package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoEndpoint is returned when a request is executed without an endpoint.
var ErrNoEndpoint = errors.New("endpoint must be set before executing request")

// RequestBuilder is a fluent builder for constructing API requests.
type RequestBuilder struct {
	client      *Client
	endpoint    string
	body        interface{}
	pathParams  map[string]string
	queryParams url.Values
	headers     map[string]string
	contentType string
}

func newRequestBuilder(c *Client) *RequestBuilder {
	return &RequestBuilder{
		client:      c,
		pathParams:  make(map[string]string),
		queryParams: make(url.Values),
		headers:     make(map[string]string),
		contentType: contentTypeJSON,
	}
}

// Endpoint sets the endpoint for the request. Path parameter placeholders use
// the {name} form, e.g. "/api/users/{id}".
func (b *RequestBuilder) Endpoint(endpoint string) *RequestBuilder {
	b.endpoint = endpoint
	return b
}

// Body sets the request body. Maps and structs are marshalled as JSON.
func (b *RequestBuilder) Body(body interface{}) *RequestBuilder {
	b.body = body
	return b
}

// PathParam adds a path parameter substituted into {key} placeholders.
func (b *RequestBuilder) PathParam(key string, value interface{}) *RequestBuilder {
	b.pathParams[key] = fmt.Sprintf("%v", value)
	return b
}

// PathParams adds multiple path parameters.
func (b *RequestBuilder) PathParams(params map[string]interface{}) *RequestBuilder {
	for key, value := range params {
		b.PathParam(key, value)
	}
	return b
}

// QueryParam adds a query parameter.
func (b *RequestBuilder) QueryParam(key string, value interface{}) *RequestBuilder {
	b.queryParams.Add(key, fmt.Sprintf("%v", value))
	return b
}

// QueryParams adds multiple query parameters.
func (b *RequestBuilder) QueryParams(params map[string]interface{}) *RequestBuilder {
	for key, value := range params {
		b.QueryParam(key, value)
	}
	return b
}

// Header adds a header.
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// Headers adds multiple headers.
func (b *RequestBuilder) Headers(headers map[string]string) *RequestBuilder {
	for key, value := range headers {
		b.headers[key] = value
	}
	return b
}

// ContentType sets the Content-Type header for the request.
func (b *RequestBuilder) ContentType(contentType string) *RequestBuilder {
	b.contentType = contentType
	return b
}

// JSON sets the content type to application/json.
func (b *RequestBuilder) JSON() *RequestBuilder {
	return b.ContentType(contentTypeJSON)
}

// FormURLEncoded sets the content type to form URL encoded.
func (b *RequestBuilder) FormURLEncoded() *RequestBuilder {
	return b.ContentType(contentTypeForm)
}

// Get executes a GET request.
func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodGet)
}

// Post executes a POST request.
func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPost)
}

// Put executes a PUT request.
func (b *RequestBuilder) Put(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPut)
}

// Patch executes a PATCH request.
func (b *RequestBuilder) Patch(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodPatch)
}

// Delete executes a DELETE request.
func (b *RequestBuilder) Delete(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodDelete)
}

// Head executes a HEAD request.
func (b *RequestBuilder) Head(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodHead)
}

// Options executes an OPTIONS request.
func (b *RequestBuilder) Options(ctx context.Context) (*Response, error) {
	return b.do(ctx, http.MethodOptions)
}

// Reset returns the builder to its initial state for reuse.
func (b *RequestBuilder) Reset() *RequestBuilder {
	b.endpoint = ""
	b.body = nil
	b.pathParams = make(map[string]string)
	b.queryParams = make(url.Values)
	b.headers = make(map[string]string)
	b.contentType = contentTypeJSON
	return b
}

// Clone copies the current builder state into a new builder.
func (b *RequestBuilder) Clone() *RequestBuilder {
	clone := newRequestBuilder(b.client)
	clone.endpoint = b.endpoint
	clone.body = b.body
	clone.contentType = b.contentType
	for key, value := range b.pathParams {
		clone.pathParams[key] = value
	}
	for key, values := range b.queryParams {
		clone.queryParams[key] = append([]string(nil), values...)
	}
	for key, value := range b.headers {
		clone.headers[key] = value
	}
	return clone
}

func (b *RequestBuilder) do(ctx context.Context, method string) (*Response, error) {
	if strings.TrimSpace(b.endpoint) == "" {
		return nil, ErrNoEndpoint
	}

	endpoint, err := expandPath(b.endpoint, b.pathParams)
	if err != nil {
		return nil, err
	}

	return b.client.execute(ctx, method, endpoint, b.body, b.queryParams, b.contentType, b.headers)
}

// expandPath substitutes {name} placeholders with escaped parameter values.
// A placeholder without a matching parameter is an error so typos fail loudly.
func expandPath(endpoint string, params map[string]string) (string, error) {
	expanded := endpoint
	for key, value := range params {
		placeholder := "{" + key + "}"
		if !strings.Contains(expanded, placeholder) {
			return "", fmt.Errorf("path parameter %q has no %s placeholder in %q", key, placeholder, endpoint)
		}
		expanded = strings.ReplaceAll(expanded, placeholder, url.PathEscape(value))
	}
	if start := strings.IndexByte(expanded, '{'); start >= 0 {
		return "", fmt.Errorf("unresolved path parameter in %q", expanded)
	}
	return expanded, nil
}
