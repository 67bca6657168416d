package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apibdd/internal/config"
)

func testLoggingConfig() config.LoggingConfig {
	return config.LoggingConfig{
		CaptureHTTP:      true,
		LogHeaders:       true,
		LogBodies:        true,
		PrettyJSON:       false,
		MaxBodyLength:    config.DefaultMaxBodyLength,
		SensitiveHeaders: config.DefaultSensitiveHeaders,
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	environment := config.Environment{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}
	return New(environment, testLoggingConfig()), server
}

func TestClient_GetSendsDefaultHeaders(t *testing.T) {
	var gotAccept, gotContentType string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))

	resp, err := c.Get(context.Background(), "/health")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "application/json", gotContentType)
	assert.True(t, resp.IsSuccess())
}

func TestClient_PostMarshalsBody(t *testing.T) {
	var received map[string]interface{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"42"}`))
	}))

	resp, err := c.Post(context.Background(), "/api/users", map[string]string{"username": "alice"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", received["username"])
	assert.Equal(t, "42", resp.JSONPath("id").String())
}

func TestClient_JoinsBaseURLAndEndpoint(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))

	// Leading slash optional on the endpoint.
	_, err := c.Get(context.Background(), "api/users")
	require.NoError(t, err)
	assert.Equal(t, "/api/users", gotPath)

	_, err = c.Get(context.Background(), "/api/users")
	require.NoError(t, err)
	assert.Equal(t, "/api/users", gotPath)
}

func TestClient_CaptureMasksSensitiveHeaders(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Key", "super-secret")
		w.Header().Set("X-Request-Id", "abc")
		w.WriteHeader(http.StatusOK)
	}))

	var captured Exchange
	c.SetCapture(func(e Exchange) { captured = e })

	_, err := c.NewRequest().
		Endpoint("/secure").
		Header("Authorization", "Bearer token-value").
		Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "[MASKED]", captured.RequestHeaders["Authorization"])
	assert.Equal(t, "[MASKED]", captured.ResponseHeaders["X-Api-Key"])
	assert.Equal(t, "abc", captured.ResponseHeaders["X-Request-Id"])
}

func TestClient_CaptureTruncatesLongBodies(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(long)
	}))
	c.logging.MaxBodyLength = 50

	var captured Exchange
	c.SetCapture(func(e Exchange) { captured = e })

	_, err := c.Get(context.Background(), "/big")
	require.NoError(t, err)

	assert.Len(t, captured.ResponseBody, 50+len(truncMarker))
	assert.Contains(t, captured.ResponseBody, "(truncated)")
}

func TestClient_CapturePrettyPrintsJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a":1,"b":{"c":2}}`))
	}))
	c.logging.PrettyJSON = true

	var captured Exchange
	c.SetCapture(func(e Exchange) { captured = e })

	_, err := c.Get(context.Background(), "/pretty")
	require.NoError(t, err)

	assert.Contains(t, captured.ResponseBody, "\n  \"a\": 1")
}

func TestClient_NoCaptureWhenDisabled(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c.logging.CaptureHTTP = false

	called := false
	c.SetCapture(func(Exchange) { called = true })

	_, err := c.Get(context.Background(), "/quiet")
	require.NoError(t, err)
	assert.False(t, called)
}

type staticAuth struct{ header string }

func (a *staticAuth) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", a.header)
	return nil
}

func (a *staticAuth) IsAuthenticated() bool { return a.header != "" }

func TestClient_AppliesAuthenticator(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))

	assert.False(t, c.IsAuthenticated())
	c.SetAuthenticator(&staticAuth{header: "Bearer tok"})
	assert.True(t, c.IsAuthenticated())

	_, err := c.Get(context.Background(), "/authed")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestEncodeBody(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"bytes", []byte("raw"), "raw"},
		{"string", "as-is", "as-is"},
		{"map", map[string]int{"n": 1}, `{"n":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := encodeBody(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}
