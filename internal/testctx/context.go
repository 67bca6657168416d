// Package testctx provides the per-scenario key/value store shared between
// step definitions. Each scenario gets its own Context so parallel scenarios
// never observe each other's state.
package testctx

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"apibdd/internal/client"
)

// Well-known context keys shared across step packages.
const (
	KeyResponse     = "last_response"
	KeyRequestBody  = "last_request_body"
	KeyEndpoint     = "last_endpoint"
	KeyUserID       = "user_id"
	KeyAuthToken    = "auth_token"
	KeyTestData     = "test_data"
	KeyScenarioName = "scenario_name"
)

// ErrNoResponse is returned when a step needs a response but no request has
// been executed yet.
var ErrNoResponse = fmt.Errorf("no response in scenario context, execute an API request first")

// Context is the mutable state of a single running scenario.
type Context struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// New creates an empty scenario context.
func New() *Context {
	return &Context{values: make(map[string]interface{})}
}

// Set stores a value under the key.
func (c *Context) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get retrieves a value, nil when absent.
func (c *Context) Get(key string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetString retrieves a string value, empty when absent or not a string.
func (c *Context) GetString(key string) string {
	s, _ := c.Get(key).(string)
	return s
}

// Has reports whether the key is present.
func (c *Context) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[key]
	return ok
}

// Delete removes a key.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Clear removes all state.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]interface{})
}

// All returns a copy of the stored values, for failure diagnostics.
func (c *Context) All() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make(map[string]interface{}, len(c.values))
	for key, value := range c.values {
		copied[key] = value
	}
	return copied
}

// SetResponse stores the last API response together with the endpoint and
// request body that produced it.
func (c *Context) SetResponse(endpoint string, requestBody interface{}, resp *client.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[KeyResponse] = resp
	c.values[KeyEndpoint] = endpoint
	if requestBody != nil {
		c.values[KeyRequestBody] = requestBody
	}
}

// Response returns the last API response, nil when none was recorded.
func (c *Context) Response() *client.Response {
	resp, _ := c.Get(KeyResponse).(*client.Response)
	return resp
}

// RequireResponse returns the last API response or ErrNoResponse.
func (c *Context) RequireResponse() (*client.Response, error) {
	if resp := c.Response(); resp != nil {
		return resp, nil
	}
	return nil, ErrNoResponse
}

// Endpoint returns the endpoint of the last request.
func (c *Context) Endpoint() string {
	return c.GetString(KeyEndpoint)
}

// ScenarioName returns the running scenario's name.
func (c *Context) ScenarioName() string {
	return c.GetString(KeyScenarioName)
}

// SetScenarioName records the running scenario's name.
func (c *Context) SetScenarioName(name string) {
	c.Set(KeyScenarioName, name)
}

// ExtractJSON evaluates a gjson path against the last response body.
func (c *Context) ExtractJSON(path string) (gjson.Result, error) {
	resp, err := c.RequireResponse()
	if err != nil {
		return gjson.Result{}, err
	}
	return resp.JSONPath(path), nil
}
