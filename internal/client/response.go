package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Response is the captured outcome of an executed request. The body is read
// eagerly so steps and validators can inspect it any number of times.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the full status line, e.g. "200 OK".
	Status string
	// Duration is the wall-clock time the request took.
	Duration time.Duration
	// Headers are the response headers.
	Headers http.Header
	// Body is the full response body.
	Body []byte
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header value.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// Header returns the named response header value.
func (r *Response) Header(name string) string {
	return r.Headers.Get(name)
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// JSONPath evaluates a gjson path expression against the response body.
func (r *Response) JSONPath(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// ValidJSON reports whether the body parses as JSON.
func (r *Response) ValidJSON() bool {
	return json.Valid(r.Body)
}
