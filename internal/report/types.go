// Package report collects scenario results and HTTP exchanges during a run
// and renders them as console output, an HTML report and a JSON report.
package report

import (
	"time"

	"apibdd/internal/client"
)

// Status is the outcome of a step or scenario.
type Status string

const (
	StatusPassed    Status = "PASSED"
	StatusFailed    Status = "FAILED"
	StatusSkipped   Status = "SKIPPED"
	StatusUndefined Status = "UNDEFINED"
	StatusPending   Status = "PENDING"
)

// StepResult is the outcome of a single step together with the HTTP
// exchanges it triggered.
type StepResult struct {
	Name      string            `json:"name"`
	Status    Status            `json:"status"`
	Duration  time.Duration     `json:"duration"`
	Error     string            `json:"error,omitempty"`
	Exchanges []client.Exchange `json:"exchanges,omitempty"`
}

// ScenarioResult is the outcome of a single scenario.
type ScenarioResult struct {
	Name      string        `json:"name"`
	Feature   string        `json:"feature"`
	Tags      []string      `json:"tags,omitempty"`
	Status    Status        `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Steps     []StepResult  `json:"steps"`
	Error     string        `json:"error,omitempty"`
}

// SuiteResult is the aggregate outcome of a run.
type SuiteResult struct {
	Title            string           `json:"title"`
	Environment      string           `json:"environment"`
	BaseURL          string           `json:"base_url"`
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Duration         time.Duration    `json:"duration"`
	TotalScenarios   int              `json:"total_scenarios"`
	PassedScenarios  int              `json:"passed_scenarios"`
	FailedScenarios  int              `json:"failed_scenarios"`
	SkippedScenarios int              `json:"skipped_scenarios"`
	OtherScenarios   int              `json:"other_scenarios"`
	Scenarios        []ScenarioResult `json:"scenarios"`
	System           SystemInfo       `json:"system"`
}

// SystemInfo describes the host the suite ran on.
type SystemInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
}

// Passed reports whether every scenario passed.
func (s *SuiteResult) Passed() bool {
	return s.FailedScenarios == 0 && s.OtherScenarios == 0
}

// SuccessRate returns the percentage of passed scenarios.
func (s *SuiteResult) SuccessRate() float64 {
	if s.TotalScenarios == 0 {
		return 0
	}
	return float64(s.PassedScenarios) / float64(s.TotalScenarios) * 100
}
