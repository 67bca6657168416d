package validate

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apibdd/internal/client"
)

func jsonResponse(status int, body string) *client.Response {
	return &client.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Duration:   20 * time.Millisecond,
		Headers: http.Header{
			"Content-Type": []string{"application/json; charset=utf-8"},
			"X-Request-Id": []string{"req-42"},
		},
		Body: []byte(body),
	}
}

func TestValidator_AllPassing(t *testing.T) {
	resp := jsonResponse(200, `{"userId":"usr-1","status":"ACTIVE","roles":["admin","user"]}`)

	err := Response(resp).
		StatusCode(200).
		StatusSuccess().
		MaxDuration(time.Second).
		ContentType("application/json").
		HeaderExists("X-Request-Id").
		HeaderEquals("X-Request-Id", "req-42").
		ValidJSON().
		BodyContains("usr-1").
		BodyNotContains("password").
		JSONPathExists("userId").
		JSONPathEquals("status", "ACTIVE").
		JSONPathMatches("userId", `^usr-\d+$`).
		JSONArrayLen("roles", 2).
		JSONArrayNotEmpty("roles").
		Err()
	require.NoError(t, err)
}

func TestValidator_AccumulatesFailures(t *testing.T) {
	resp := jsonResponse(404, `{"error":"not found"}`)

	v := Response(resp).
		StatusCode(200).
		StatusSuccess().
		JSONPathExists("userId")

	require.Len(t, v.Failures(), 3)

	err := v.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected status code 200, got 404")
	assert.Contains(t, err.Error(), "expected success status")
	assert.Contains(t, err.Error(), `expected JSON path "userId" to exist`)
}

func TestValidator_StatusIn(t *testing.T) {
	resp := jsonResponse(202, `{}`)
	assert.NoError(t, Response(resp).StatusIn(200, 201, 202).Err())
	assert.Error(t, Response(resp).StatusIn(200, 201).Err())
}

func TestValidator_NilResponse(t *testing.T) {
	err := Response(nil).StatusCode(200).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response to validate")
}

func TestValidator_Body(t *testing.T) {
	assert.NoError(t, Response(jsonResponse(204, "")).BodyEmpty().Err())
	assert.Error(t, Response(jsonResponse(200, `{"a":1}`)).BodyEmpty().Err())
	assert.NoError(t, Response(jsonResponse(200, `{"a":1}`)).BodyNotEmpty().Err())
	assert.Error(t, Response(jsonResponse(204, "  ")).BodyNotEmpty().Err())
}

func TestValidator_JSONPath(t *testing.T) {
	resp := jsonResponse(200, `{"payment":{"amount":250.75,"currency":"AUD"},"items":[]}`)

	assert.NoError(t, Response(resp).JSONPathEquals("payment.amount", "250.75").Err())
	assert.NoError(t, Response(resp).JSONPathAbsent("payment.reference").Err())
	assert.Error(t, Response(resp).JSONPathAbsent("payment.currency").Err())
	assert.Error(t, Response(resp).JSONPathEquals("payment.currency", "USD").Err())
	assert.Error(t, Response(resp).JSONArrayNotEmpty("items").Err())
	assert.Error(t, Response(resp).JSONArrayLen("payment", 1).Err())
}

func TestValidator_InvalidPattern(t *testing.T) {
	resp := jsonResponse(200, `{"id":"x"}`)
	err := Response(resp).JSONPathMatches("id", "[unclosed").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestValidator_MaxDuration(t *testing.T) {
	resp := jsonResponse(200, `{}`)
	resp.Duration = 3 * time.Second
	err := Response(resp).MaxDuration(time.Second).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected response within 1s")
}
