// Package validate provides fluent assertions over API responses. Failures
// accumulate instead of stopping at the first mismatch so a step can report
// every violated expectation at once.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"apibdd/internal/client"
)

// Validator accumulates assertion failures against a single response.
type Validator struct {
	resp     *client.Response
	failures []string
}

// Response starts a validation chain for the response.
func Response(resp *client.Response) *Validator {
	v := &Validator{resp: resp}
	if resp == nil {
		v.failf("no response to validate")
	}
	return v
}

func (v *Validator) failf(format string, args ...interface{}) *Validator {
	v.failures = append(v.failures, fmt.Sprintf(format, args...))
	return v
}

// ok reports whether the chain can keep asserting against the response.
func (v *Validator) ok() bool {
	return v.resp != nil
}

// StatusCode asserts the exact status code.
func (v *Validator) StatusCode(expected int) *Validator {
	if !v.ok() {
		return v
	}
	if v.resp.StatusCode != expected {
		v.failf("expected status code %d, got %d (%s)", expected, v.resp.StatusCode, summarize(v.resp))
	}
	return v
}

// StatusIn asserts the status code is one of the given codes.
func (v *Validator) StatusIn(codes ...int) *Validator {
	if !v.ok() {
		return v
	}
	for _, code := range codes {
		if v.resp.StatusCode == code {
			return v
		}
	}
	return v.failf("expected status code in %v, got %d", codes, v.resp.StatusCode)
}

// StatusSuccess asserts a 2xx status code.
func (v *Validator) StatusSuccess() *Validator {
	if !v.ok() {
		return v
	}
	if !v.resp.IsSuccess() {
		v.failf("expected success status, got %d (%s)", v.resp.StatusCode, summarize(v.resp))
	}
	return v
}

// MaxDuration asserts the response arrived within the duration.
func (v *Validator) MaxDuration(max time.Duration) *Validator {
	if !v.ok() {
		return v
	}
	if v.resp.Duration > max {
		v.failf("expected response within %s, took %s", max, v.resp.Duration.Round(time.Millisecond))
	}
	return v
}

// ContentType asserts the Content-Type header contains the given type.
func (v *Validator) ContentType(expected string) *Validator {
	if !v.ok() {
		return v
	}
	actual := v.resp.ContentType()
	if !strings.Contains(actual, expected) {
		v.failf("expected content type %q, got %q", expected, actual)
	}
	return v
}

// HeaderExists asserts the header is present.
func (v *Validator) HeaderExists(name string) *Validator {
	if !v.ok() {
		return v
	}
	if v.resp.Header(name) == "" {
		v.failf("expected header %q to be present", name)
	}
	return v
}

// HeaderEquals asserts the header has the exact value.
func (v *Validator) HeaderEquals(name, expected string) *Validator {
	if !v.ok() {
		return v
	}
	actual := v.resp.Header(name)
	if actual != expected {
		v.failf("expected header %q to be %q, got %q", name, expected, actual)
	}
	return v
}

// BodyContains asserts the body contains the substring.
func (v *Validator) BodyContains(substring string) *Validator {
	if !v.ok() {
		return v
	}
	if !strings.Contains(v.resp.BodyString(), substring) {
		v.failf("expected body to contain %q", substring)
	}
	return v
}

// BodyNotContains asserts the body does not contain the substring.
func (v *Validator) BodyNotContains(substring string) *Validator {
	if !v.ok() {
		return v
	}
	if strings.Contains(v.resp.BodyString(), substring) {
		v.failf("expected body not to contain %q", substring)
	}
	return v
}

// BodyEmpty asserts an empty body.
func (v *Validator) BodyEmpty() *Validator {
	if !v.ok() {
		return v
	}
	if len(strings.TrimSpace(v.resp.BodyString())) > 0 {
		v.failf("expected empty body, got %d bytes", len(v.resp.Body))
	}
	return v
}

// BodyNotEmpty asserts a non-empty body.
func (v *Validator) BodyNotEmpty() *Validator {
	if !v.ok() {
		return v
	}
	if len(strings.TrimSpace(v.resp.BodyString())) == 0 {
		v.failf("expected non-empty body")
	}
	return v
}

// ValidJSON asserts the body parses as JSON.
func (v *Validator) ValidJSON() *Validator {
	if !v.ok() {
		return v
	}
	if !v.resp.ValidJSON() {
		v.failf("expected body to be valid JSON")
	}
	return v
}

// JSONPathExists asserts the path resolves to a value.
func (v *Validator) JSONPathExists(path string) *Validator {
	if !v.ok() {
		return v
	}
	if !v.resp.JSONPath(path).Exists() {
		v.failf("expected JSON path %q to exist", path)
	}
	return v
}

// JSONPathAbsent asserts the path does not resolve to a value.
func (v *Validator) JSONPathAbsent(path string) *Validator {
	if !v.ok() {
		return v
	}
	if result := v.resp.JSONPath(path); result.Exists() {
		v.failf("expected JSON path %q to be absent, got %q", path, result.String())
	}
	return v
}

// JSONPathEquals asserts the path resolves to the expected value. Values are
// compared as strings so numeric and boolean expectations read naturally in
// feature files.
func (v *Validator) JSONPathEquals(path, expected string) *Validator {
	if !v.ok() {
		return v
	}
	result := v.resp.JSONPath(path)
	if !result.Exists() {
		return v.failf("expected JSON path %q to equal %q, path does not exist", path, expected)
	}
	if result.String() != expected {
		v.failf("expected JSON path %q to equal %q, got %q", path, expected, result.String())
	}
	return v
}

// JSONPathMatches asserts the path value matches the regular expression.
func (v *Validator) JSONPathMatches(path, pattern string) *Validator {
	if !v.ok() {
		return v
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return v.failf("invalid pattern %q for JSON path %q: %v", pattern, path, err)
	}
	result := v.resp.JSONPath(path)
	if !result.Exists() {
		return v.failf("expected JSON path %q to match %q, path does not exist", path, pattern)
	}
	if !re.MatchString(result.String()) {
		v.failf("expected JSON path %q to match %q, got %q", path, pattern, result.String())
	}
	return v
}

// JSONArrayLen asserts the path resolves to an array of the given length.
func (v *Validator) JSONArrayLen(path string, expected int) *Validator {
	if !v.ok() {
		return v
	}
	result := v.resp.JSONPath(path)
	if !result.IsArray() {
		return v.failf("expected JSON path %q to be an array", path)
	}
	if actual := len(result.Array()); actual != expected {
		v.failf("expected JSON array %q to have %d elements, got %d", path, expected, actual)
	}
	return v
}

// JSONArrayNotEmpty asserts the path resolves to a non-empty array.
func (v *Validator) JSONArrayNotEmpty(path string) *Validator {
	if !v.ok() {
		return v
	}
	result := v.resp.JSONPath(path)
	if !result.IsArray() {
		return v.failf("expected JSON path %q to be an array", path)
	}
	if len(result.Array()) == 0 {
		v.failf("expected JSON array %q to be non-empty", path)
	}
	return v
}

// Failures returns the accumulated failure messages.
func (v *Validator) Failures() []string {
	return v.failures
}

// Err returns nil when every assertion passed, otherwise an error listing all
// failures.
func (v *Validator) Err() error {
	if len(v.failures) == 0 {
		return nil
	}
	return errors.New("response validation failed:\n  - " + strings.Join(v.failures, "\n  - "))
}

// summarize renders a short body excerpt for failure messages.
func summarize(resp *client.Response) string {
	body := strings.TrimSpace(resp.BodyString())
	if body == "" {
		return "empty body"
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return "body: " + body
}
