package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"apibdd/internal/config"
	"apibdd/internal/data"
	"apibdd/internal/report"
	"apibdd/internal/runner"
	"apibdd/internal/steps"
	"apibdd/pkg/logging"
)

type runFlags struct {
	env          string
	features     []string
	tags         string
	concurrency  int
	failFast     bool
	format       string
	reportDir    string
	noHTMLReport bool
	noJSONReport bool
	dataDir      string
	timeout      time.Duration
	verbose      bool
	logLevelSet  bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute feature files against an API environment",
		Long: `Run executes the Gherkin feature files against the selected
environment. Scenario, step, and HTTP exchange results are collected
into console, HTML, and JSON reports. The command exits non-zero
when any scenario fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flag("log-level"); f != nil {
				flags.logLevelSet = f.Changed
			}
			return runSuite(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.env, "env", "e", "", "environment to target (default from config)")
	cmd.Flags().StringSliceVarP(&flags.features, "features", "f", []string{"features"}, "feature file or directory paths")
	cmd.Flags().StringVarP(&flags.tags, "tags", "t", "", "tag expression, e.g. '@smoke && ~@wip'")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "c", 1, "number of scenarios to run in parallel (1-16)")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "stop on first scenario failure")
	cmd.Flags().StringVar(&flags.format, "format", "pretty", "godog output format (pretty, progress)")
	cmd.Flags().StringVar(&flags.reportDir, "report-dir", "", "report output directory (default from config)")
	cmd.Flags().BoolVar(&flags.noHTMLReport, "no-html-report", false, "skip the HTML report")
	cmd.Flags().BoolVar(&flags.noJSONReport, "no-json-report", false, "skip the JSON report")
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "test data directory (default from config)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-request timeout override (default from config)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list every scenario and step in the summary")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"pretty", "progress"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runSuite(flags *runFlags) error {
	if flags.concurrency < 1 || flags.concurrency > 16 {
		return fmt.Errorf("concurrency must be between 1 and 16, got %d", flags.concurrency)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLoggingFromConfig(cfg, flags.logLevelSet)

	environment, envName := cfg.ResolveEnvironment(flags.env)
	environment = withTimeout(environment, flags.timeout)
	logging.Info("run", "Targeting environment %q at %s", envName, environment.BaseURL)

	dataDir := flags.dataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	reportDir := flags.reportDir
	if reportDir == "" {
		reportDir = cfg.Report.Dir
	}

	recorder := report.NewRecorder(cfg.Report.Title, envName, environment.BaseURL)
	suiteRunner := runner.New(steps.Deps{
		Environment: environment,
		Logging:     cfg.Logging,
		Data:        data.NewProvider(dataDir),
	}, recorder, runner.Options{
		Features:    flags.features,
		Tags:        flags.tags,
		Concurrency: flags.concurrency,
		FailFast:    flags.failFast,
		Format:      flags.format,
	})

	suite, ok := suiteRunner.Run()

	report.NewConsoleReporter(os.Stdout, flags.verbose).Summarize(suite)

	if cfg.Report.HTML && !flags.noHTMLReport {
		path, err := report.NewHTMLWriter(reportDir).Write(suite)
		if err != nil {
			logging.Error("run", err, "Failed to write HTML report")
		} else {
			fmt.Printf("📄 HTML report saved to: %s\n", path)
		}
	}
	if cfg.Report.JSON && !flags.noJSONReport {
		path, err := report.NewJSONWriter(reportDir).Write(suite)
		if err != nil {
			logging.Error("run", err, "Failed to write JSON report")
		} else {
			fmt.Printf("📄 JSON report saved to: %s\n", path)
		}
	}

	if !ok || !suite.Passed() {
		return fmt.Errorf("%d of %d scenarios failed",
			suite.FailedScenarios+suite.OtherScenarios, suite.TotalScenarios)
	}
	return nil
}

// withTimeout replaces the environment's per-request timeout when an
// override is given on the command line.
func withTimeout(environment config.Environment, timeout time.Duration) config.Environment {
	if timeout > 0 {
		environment.Timeout = timeout
	}
	return environment
}
