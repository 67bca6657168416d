// Package runner executes feature files with godog and collects results into
// a report suite.
package runner

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cucumber/godog"

	"apibdd/internal/client"
	"apibdd/internal/report"
	"apibdd/internal/steps"
	"apibdd/pkg/logging"
)

// Options control a suite run.
type Options struct {
	// Features are feature file or directory paths.
	Features []string
	// Tags is a godog tag expression, for example "@smoke && ~@wip".
	Tags string
	// Concurrency is the number of scenarios executed in parallel.
	Concurrency int
	// FailFast stops the run on the first failure.
	FailFast bool
	// Format is the godog output format.
	Format string
	// Output receives godog's own progress output. Defaults to stdout.
	Output io.Writer
}

// Runner drives godog over the configured features.
type Runner struct {
	deps     steps.Deps
	recorder *report.Recorder
	opts     Options
}

// New creates a runner. The recorder receives every scenario, step, and HTTP
// exchange of the run.
func New(deps steps.Deps, recorder *report.Recorder, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Format == "" {
		opts.Format = "pretty"
	}
	// godog's pretty format does not support concurrent execution.
	if opts.Concurrency > 1 && opts.Format == "pretty" {
		opts.Format = "progress"
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{deps: deps, recorder: recorder, opts: opts}
}

// Run executes the suite and returns the collected result. The boolean
// reports whether godog finished with a zero status.
func (r *Runner) Run() (*report.SuiteResult, bool) {
	suite := godog.TestSuite{
		Name:                "apibdd",
		ScenarioInitializer: r.initializeScenario,
		Options: &godog.Options{
			Format:        r.opts.Format,
			Paths:         r.opts.Features,
			Tags:          r.opts.Tags,
			Concurrency:   r.opts.Concurrency,
			StopOnFailure: r.opts.FailFast,
			Strict:        true,
			Output:        r.opts.Output,
		},
	}

	status := suite.Run()
	if status != 0 {
		logging.Warn("runner", "Suite finished with status %d", status)
	}
	return r.recorder.Finish(), status == 0
}

// initializeScenario is called by godog for every scenario. Each scenario
// gets its own step state, client, and auth manager.
func (r *Runner) initializeScenario(sc *godog.ScenarioContext) {
	scenarioSteps := steps.New(r.deps)

	var (
		scenarioID string
		stepStart  time.Time
	)

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		scenarioID = scenario.Id
		scenarioSteps.Context().SetScenarioName(scenario.Name)
		r.recorder.BeginScenario(scenario.Id, scenario.Name, scenario.Uri, tagNames(scenario))
		scenarioSteps.Client().SetCapture(func(exchange client.Exchange) {
			r.recorder.AddExchange(scenario.Id, exchange)
		})
		logging.Debug("runner", "Scenario started: %s", scenario.Name)
		return ctx, nil
	})

	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		r.recorder.EndScenario(scenario.Id, err)
		scenarioSteps.Reset()
		logging.Debug("runner", "Scenario finished: %s", scenario.Name)
		return ctx, nil
	})

	sc.StepContext().Before(func(ctx context.Context, step *godog.Step) (context.Context, error) {
		stepStart = time.Now()
		return ctx, nil
	})

	sc.StepContext().After(func(ctx context.Context, step *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
		r.recorder.RecordStep(scenarioID, step.Text, statusFrom(status), time.Since(stepStart), err)
		return ctx, nil
	})

	scenarioSteps.Register(sc)
}

func statusFrom(status godog.StepResultStatus) report.Status {
	switch status {
	case godog.StepPassed:
		return report.StatusPassed
	case godog.StepFailed:
		return report.StatusFailed
	case godog.StepSkipped:
		return report.StatusSkipped
	case godog.StepPending:
		return report.StatusPending
	default:
		return report.StatusUndefined
	}
}

func tagNames(scenario *godog.Scenario) []string {
	if len(scenario.Tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(scenario.Tags))
	for _, tag := range scenario.Tags {
		names = append(names, tag.Name)
	}
	return names
}
