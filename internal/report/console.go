package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#22863A", Dark: "#73F59F"})
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CB2431", Dark: "#FF6B6B"})
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6A737D", Dark: "#8B949E"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6A737D", Dark: "#8B949E"})
)

// ConsoleReporter prints a human-readable suite summary.
type ConsoleReporter struct {
	out     io.Writer
	verbose bool
}

// NewConsoleReporter creates a console reporter writing to out.
func NewConsoleReporter(out io.Writer, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, verbose: verbose}
}

// Summarize prints the suite result.
func (r *ConsoleReporter) Summarize(suite *SuiteResult) {
	fmt.Fprintf(r.out, "\n%s\n", titleStyle.Render("🏁 "+suite.Title))
	fmt.Fprintf(r.out, "📡 Environment: %s (%s)\n", suite.Environment, suite.BaseURL)
	fmt.Fprintf(r.out, "⏱️  Duration: %v\n", suite.Duration.Round(1e6))
	fmt.Fprintf(r.out, "📊 Results:\n")
	fmt.Fprintf(r.out, "   %s\n", passedStyle.Render(fmt.Sprintf("✅ Passed: %d", suite.PassedScenarios)))
	if suite.FailedScenarios > 0 {
		fmt.Fprintf(r.out, "   %s\n", failedStyle.Render(fmt.Sprintf("❌ Failed: %d", suite.FailedScenarios)))
	}
	if suite.SkippedScenarios > 0 {
		fmt.Fprintf(r.out, "   %s\n", skippedStyle.Render(fmt.Sprintf("⏭️  Skipped: %d", suite.SkippedScenarios)))
	}
	if suite.OtherScenarios > 0 {
		fmt.Fprintf(r.out, "   %s\n", failedStyle.Render(fmt.Sprintf("💥 Undefined/pending: %d", suite.OtherScenarios)))
	}
	fmt.Fprintf(r.out, "   📈 Total: %d\n", suite.TotalScenarios)
	fmt.Fprintf(r.out, "   📏 Success Rate: %.1f%%\n", suite.SuccessRate())

	if r.verbose || !suite.Passed() {
		r.printScenarios(suite)
	}

	if suite.Passed() {
		fmt.Fprintf(r.out, "\n%s\n", passedStyle.Render("🎉 All scenarios passed!"))
	} else {
		fmt.Fprintf(r.out, "\n%s\n", failedStyle.Render("💔 Some scenarios failed"))
	}
}

func (r *ConsoleReporter) printScenarios(suite *SuiteResult) {
	currentFeature := ""
	for _, scenario := range suite.Scenarios {
		if !r.verbose && scenario.Status == StatusPassed {
			continue
		}
		if scenario.Feature != currentFeature {
			currentFeature = scenario.Feature
			fmt.Fprintf(r.out, "\n%s\n", mutedStyle.Render(currentFeature))
		}
		fmt.Fprintf(r.out, "  %s %s (%v)\n", statusSymbol(scenario.Status), scenario.Name, scenario.Duration.Round(1e6))
		if scenario.Error != "" {
			for _, line := range strings.Split(scenario.Error, "\n") {
				fmt.Fprintf(r.out, "     %s\n", failedStyle.Render(line))
			}
		}
		if r.verbose {
			for _, step := range scenario.Steps {
				fmt.Fprintf(r.out, "     %s %s (%v)\n", statusSymbol(step.Status), step.Name, step.Duration.Round(1e6))
			}
		}
	}
}

func statusSymbol(status Status) string {
	switch status {
	case StatusPassed:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusSkipped:
		return "⏭️"
	case StatusUndefined, StatusPending:
		return "❓"
	default:
		return "💥"
	}
}
