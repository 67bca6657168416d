package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBuilder_PathAndQueryParams(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	}))

	_, err := c.NewRequest().
		Endpoint("/api/users/{id}/posts").
		PathParam("id", 42).
		QueryParam("page", 2).
		QueryParam("status", "active").
		Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/users/42/posts", gotPath)
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "status=active")
}

func TestRequestBuilder_MissingEndpoint(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := c.NewRequest().Get(context.Background())
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestRequestBuilder_UnresolvedPathParam(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := c.NewRequest().
		Endpoint("/api/users/{id}").
		Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved path parameter")
}

func TestRequestBuilder_ExtraPathParam(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := c.NewRequest().
		Endpoint("/api/users").
		PathParam("id", 1).
		Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no {id} placeholder")
}

func TestRequestBuilder_CustomContentType(t *testing.T) {
	var gotContentType, gotBody string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
	}))

	_, err := c.NewRequest().
		Endpoint("/form").
		FormURLEncoded().
		Body("a=1&b=2").
		Post(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "a=1&b=2", gotBody)
}

func TestRequestBuilder_Clone(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	original := c.NewRequest().
		Endpoint("/api/users/{id}").
		PathParam("id", 1).
		QueryParam("full", true).
		Header("X-Trace", "t1")

	clone := original.Clone()
	clone.PathParam("id", 2)

	assert.Equal(t, "1", original.pathParams["id"])
	assert.Equal(t, "2", clone.pathParams["id"])
	assert.Equal(t, original.endpoint, clone.endpoint)
	assert.Equal(t, "t1", clone.headers["X-Trace"])
}

func TestRequestBuilder_Reset(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	b := c.NewRequest().
		Endpoint("/api/users").
		Body(map[string]string{"k": "v"}).
		Header("X-One", "1").
		Reset()

	assert.Empty(t, b.endpoint)
	assert.Nil(t, b.body)
	assert.Empty(t, b.headers)
	assert.Equal(t, contentTypeJSON, b.contentType)
}
