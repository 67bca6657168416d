package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apibdd/internal/client"
)

func sampleSuite(t *testing.T) *SuiteResult {
	t.Helper()
	r := NewRecorder("API Test Report", "dev", "http://localhost:8080")

	r.BeginScenario("s1", "Create a new user", "features/users.feature", []string{"@smoke"})
	r.AddExchange("s1", client.Exchange{
		Method:         "POST",
		Endpoint:       "/api/users",
		URL:            "http://localhost:8080/api/users",
		RequestHeaders: map[string]string{"Authorization": "[MASKED]"},
		RequestBody:    `{"username":"alice"}`,
		StatusCode:     201,
		Status:         "201 Created",
		Duration:       15 * time.Millisecond,
		ResponseBody:   `{"userId":"usr-1"}`,
	})
	r.RecordStep("s1", "I send a POST request to create a user", StatusPassed, 20*time.Millisecond, nil)
	r.RecordStep("s1", "the response status code should be 201", StatusPassed, time.Millisecond, nil)
	r.EndScenario("s1", nil)

	r.BeginScenario("s2", "Reject payment with insufficient funds", "features/payments.feature", nil)
	r.RecordStep("s2", "the response status code should be 422", StatusFailed, time.Millisecond,
		errors.New("expected status code 422, got 500"))
	r.EndScenario("s2", nil)

	return r.Finish()
}

func TestRecorder_Counts(t *testing.T) {
	suite := sampleSuite(t)

	assert.Equal(t, 2, suite.TotalScenarios)
	assert.Equal(t, 1, suite.PassedScenarios)
	assert.Equal(t, 1, suite.FailedScenarios)
	assert.False(t, suite.Passed())
	assert.InDelta(t, 50.0, suite.SuccessRate(), 0.01)
}

func TestRecorder_ExchangeAttachesToStep(t *testing.T) {
	suite := sampleSuite(t)

	var created *ScenarioResult
	for i := range suite.Scenarios {
		if suite.Scenarios[i].Name == "Create a new user" {
			created = &suite.Scenarios[i]
		}
	}
	require.NotNil(t, created)
	require.Len(t, created.Steps, 2)
	require.Len(t, created.Steps[0].Exchanges, 1)
	assert.Empty(t, created.Steps[1].Exchanges)
	assert.Equal(t, "[MASKED]", created.Steps[0].Exchanges[0].RequestHeaders["Authorization"])
}

func TestRecorder_ScenarioErrorMarksFailure(t *testing.T) {
	r := NewRecorder("t", "dev", "http://localhost:8080")
	r.BeginScenario("s1", "Hook failure", "f", nil)
	r.RecordStep("s1", "a step", StatusPassed, time.Millisecond, nil)
	r.EndScenario("s1", errors.New("teardown exploded"))

	suite := r.Finish()
	require.Len(t, suite.Scenarios, 1)
	assert.Equal(t, StatusFailed, suite.Scenarios[0].Status)
	assert.Equal(t, "teardown exploded", suite.Scenarios[0].Error)
}

func TestRecorder_UndefinedStep(t *testing.T) {
	r := NewRecorder("t", "dev", "http://localhost:8080")
	r.BeginScenario("s1", "Missing step", "f", nil)
	r.RecordStep("s1", "something nobody implemented", StatusUndefined, 0, nil)
	r.EndScenario("s1", nil)

	suite := r.Finish()
	assert.Equal(t, StatusUndefined, suite.Scenarios[0].Status)
	assert.Equal(t, 1, suite.OtherScenarios)
	assert.False(t, suite.Passed())
}

func TestRecorder_ConcurrentScenarios(t *testing.T) {
	r := NewRecorder("t", "dev", "http://localhost:8080")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			r.BeginScenario(id, "scenario "+id, "f", nil)
			r.AddExchange(id, client.Exchange{Method: "GET"})
			r.RecordStep(id, "step", StatusPassed, time.Millisecond, nil)
			r.EndScenario(id, nil)
		}(i)
	}
	wg.Wait()

	suite := r.Finish()
	assert.Equal(t, 20, suite.TotalScenarios)
	assert.Equal(t, 20, suite.PassedScenarios)
}

func TestConsoleReporter(t *testing.T) {
	suite := sampleSuite(t)

	var buf bytes.Buffer
	NewConsoleReporter(&buf, false).Summarize(suite)

	out := buf.String()
	assert.Contains(t, out, "Passed: 1")
	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "Success Rate: 50.0%")
	assert.Contains(t, out, "Reject payment with insufficient funds")
	assert.Contains(t, out, "expected status code 422, got 500")
	// Passing scenarios are only listed in verbose mode.
	assert.NotContains(t, out, "Create a new user")

	buf.Reset()
	NewConsoleReporter(&buf, true).Summarize(suite)
	assert.Contains(t, buf.String(), "Create a new user")
	assert.Contains(t, buf.String(), "I send a POST request to create a user")
}

func TestHTMLWriter(t *testing.T) {
	suite := sampleSuite(t)
	dir := t.TempDir()

	path, err := NewHTMLWriter(dir).Write(suite)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "apibdd-report-"))
	assert.True(t, strings.HasSuffix(path, ".html"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(content)

	assert.Contains(t, page, "API Test Report")
	assert.Contains(t, page, "Create a new user")
	assert.Contains(t, page, "http://localhost:8080/api/users")
	assert.Contains(t, page, "[MASKED]")
	assert.Contains(t, page, "expected status code 422, got 500")
	// Body content is HTML-escaped.
	assert.Contains(t, page, "{&#34;username&#34;:&#34;alice&#34;}")
}

func TestJSONWriter(t *testing.T) {
	suite := sampleSuite(t)
	dir := t.TempDir()

	path, err := NewJSONWriter(dir).Write(suite)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded SuiteResult
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, suite.TotalScenarios, decoded.TotalScenarios)
	assert.Equal(t, suite.Title, decoded.Title)
	require.Len(t, decoded.Scenarios, 2)
}

func TestJSONWriter_CreatesDirectory(t *testing.T) {
	suite := sampleSuite(t)
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	_, err := NewJSONWriter(dir).Write(suite)
	require.NoError(t, err)
	_, err = os.Stat(dir)
	require.NoError(t, err)
}
