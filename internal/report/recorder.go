package report

import (
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"apibdd/internal/client"
)

// Recorder accumulates results while scenarios execute, possibly from several
// goroutines at once. Each scenario is tracked under the unique id assigned
// by the scenario runner.
type Recorder struct {
	title       string
	environment string
	baseURL     string
	startTime   time.Time

	mu        sync.Mutex
	order     []string
	scenarios map[string]*scenarioState
}

type scenarioState struct {
	result ScenarioResult
	// exchanges captured since the last recorded step; they attach to the
	// step that completes next.
	pending []client.Exchange
}

// NewRecorder starts recording a suite.
func NewRecorder(title, environment, baseURL string) *Recorder {
	return &Recorder{
		title:       title,
		environment: environment,
		baseURL:     baseURL,
		startTime:   time.Now(),
		scenarios:   make(map[string]*scenarioState),
	}
}

// BeginScenario registers a scenario as running.
func (r *Recorder) BeginScenario(id, name, feature string, tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
	r.scenarios[id] = &scenarioState{
		result: ScenarioResult{
			Name:      name,
			Feature:   feature,
			Tags:      tags,
			Status:    StatusPassed,
			StartTime: time.Now(),
		},
	}
}

// AddExchange attaches an HTTP exchange to the scenario's currently running
// step. Exchanges arriving for unknown scenarios are dropped.
func (r *Recorder) AddExchange(id string, exchange client.Exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.scenarios[id]; ok {
		state.pending = append(state.pending, exchange)
	}
}

// RecordStep appends a completed step to the scenario, draining any HTTP
// exchanges captured since the previous step.
func (r *Recorder) RecordStep(id, name string, status Status, duration time.Duration, stepErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.scenarios[id]
	if !ok {
		return
	}

	step := StepResult{
		Name:      name,
		Status:    status,
		Duration:  duration,
		Exchanges: state.pending,
	}
	if stepErr != nil {
		step.Error = stepErr.Error()
	}
	state.pending = nil
	state.result.Steps = append(state.result.Steps, step)

	switch status {
	case StatusFailed:
		state.result.Status = StatusFailed
		state.result.Error = step.Error
	case StatusUndefined, StatusPending:
		if state.result.Status == StatusPassed {
			state.result.Status = status
		}
	}
}

// EndScenario finalizes a scenario. A non-nil error marks it failed even when
// no individual step reported a failure.
func (r *Recorder) EndScenario(id string, scenarioErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.scenarios[id]
	if !ok {
		return
	}
	state.result.EndTime = time.Now()
	state.result.Duration = state.result.EndTime.Sub(state.result.StartTime)
	if scenarioErr != nil && state.result.Status == StatusPassed {
		state.result.Status = StatusFailed
		state.result.Error = scenarioErr.Error()
	}
}

// Finish assembles the suite result. Scenarios are reported grouped by
// feature in start order.
func (r *Recorder) Finish() *SuiteResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	suite := &SuiteResult{
		Title:       r.title,
		Environment: r.environment,
		BaseURL:     r.baseURL,
		StartTime:   r.startTime,
		EndTime:     time.Now(),
		System:      collectSystemInfo(),
	}
	suite.Duration = suite.EndTime.Sub(suite.StartTime)

	for _, id := range r.order {
		suite.Scenarios = append(suite.Scenarios, r.scenarios[id].result)
	}
	sort.SliceStable(suite.Scenarios, func(i, j int) bool {
		return suite.Scenarios[i].Feature < suite.Scenarios[j].Feature
	})

	suite.TotalScenarios = len(suite.Scenarios)
	for _, scenario := range suite.Scenarios {
		switch scenario.Status {
		case StatusPassed:
			suite.PassedScenarios++
		case StatusFailed:
			suite.FailedScenarios++
		case StatusSkipped:
			suite.SkippedScenarios++
		default:
			suite.OtherScenarios++
		}
	}
	return suite
}

func collectSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}
