package report

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 0; background: #f6f8fa; color: #24292e; }
header { background: #24292e; color: #fff; padding: 16px 24px; }
header h1 { margin: 0; font-size: 20px; }
header .meta { color: #959da5; font-size: 13px; margin-top: 4px; }
.summary { display: flex; gap: 16px; padding: 16px 24px; }
.summary .card { background: #fff; border: 1px solid #e1e4e8; border-radius: 6px; padding: 12px 20px; }
.summary .card .num { font-size: 24px; font-weight: 600; }
.summary .passed .num { color: #22863a; }
.summary .failed .num { color: #cb2431; }
.summary .skipped .num { color: #6a737d; }
main { padding: 0 24px 24px; }
.feature { margin-top: 16px; font-size: 14px; color: #586069; text-transform: uppercase; letter-spacing: .04em; }
.scenario { background: #fff; border: 1px solid #e1e4e8; border-radius: 6px; margin-top: 8px; }
.scenario > .head { padding: 10px 16px; display: flex; justify-content: space-between; }
.scenario.failed > .head { border-left: 4px solid #cb2431; }
.scenario.passed > .head { border-left: 4px solid #22863a; }
.scenario .tags { color: #6f42c1; font-size: 12px; }
.step { padding: 6px 16px 6px 32px; border-top: 1px solid #f1f3f5; font-size: 14px; }
.step .err { color: #cb2431; white-space: pre-wrap; margin-top: 4px; }
.exchange { background: #f6f8fa; border: 1px solid #e1e4e8; border-radius: 4px; margin: 6px 0; padding: 8px 12px; font-size: 12px; }
.exchange pre { margin: 4px 0; white-space: pre-wrap; word-break: break-all; }
.duration { color: #6a737d; font-size: 12px; }
</style>
</head>
<body>
<header>
<h1>{{title}}</h1>
<div class="meta">Environment: {{environment}} · {{baseURL}} · Started {{started}} · Duration {{duration}} · Host {{host}} ({{platform}})</div>
</header>
<div class="summary">
<div class="card"><div class="num">{{total}}</div>Total</div>
<div class="card passed"><div class="num">{{passed}}</div>Passed</div>
<div class="card failed"><div class="num">{{failed}}</div>Failed</div>
<div class="card skipped"><div class="num">{{skipped}}</div>Skipped</div>
<div class="card"><div class="num">{{rate}}%</div>Success Rate</div>
</div>
<main>
{{scenarios}}
</main>
</body>
</html>
`

const scenarioTemplate = `<section class="scenario {{class}}">
<div class="head"><div><strong>{{name}}</strong> <span class="tags">{{tags}}</span></div><div class="duration">{{status}} · {{duration}}</div></div>
{{steps}}
</section>
`

const stepTemplate = `<div class="step">{{symbol}} {{name}} <span class="duration">{{duration}}</span>{{error}}{{exchanges}}</div>
`

const exchangeTemplate = `<div class="exchange">
<div><strong>{{method}}</strong> {{url}} → {{status}} <span class="duration">{{duration}}</span></div>
<pre>Request headers: {{requestHeaders}}</pre>{{requestBody}}
<pre>Response headers: {{responseHeaders}}</pre>{{responseBody}}
</div>
`

// HTMLWriter renders a suite result as a standalone HTML report.
type HTMLWriter struct {
	dir string
}

// NewHTMLWriter creates a writer that saves reports under dir.
func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{dir: dir}
}

// Write renders the report and returns the path of the written file.
func (w *HTMLWriter) Write(suite *SuiteResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	page := fasttemplate.New(pageTemplate, "{{", "}}")
	rendered := page.ExecuteString(map[string]interface{}{
		"title":       html.EscapeString(suite.Title),
		"environment": html.EscapeString(suite.Environment),
		"baseURL":     html.EscapeString(suite.BaseURL),
		"started":     suite.StartTime.Format(time.RFC1123),
		"duration":    suite.Duration.Round(time.Millisecond).String(),
		"host":        html.EscapeString(suite.System.Hostname),
		"platform":    suite.System.OS + "/" + suite.System.Arch,
		"total":       fmt.Sprintf("%d", suite.TotalScenarios),
		"passed":      fmt.Sprintf("%d", suite.PassedScenarios),
		"failed":      fmt.Sprintf("%d", suite.FailedScenarios+suite.OtherScenarios),
		"skipped":     fmt.Sprintf("%d", suite.SkippedScenarios),
		"rate":        fmt.Sprintf("%.1f", suite.SuccessRate()),
		"scenarios":   renderScenarios(suite),
	})

	filename := fmt.Sprintf("apibdd-report-%s.html", time.Now().Format("20060102-150405"))
	fullPath := filepath.Join(w.dir, filename)
	if err := os.WriteFile(fullPath, []byte(rendered), 0644); err != nil {
		return "", fmt.Errorf("write HTML report: %w", err)
	}
	return fullPath, nil
}

func renderScenarios(suite *SuiteResult) string {
	var b strings.Builder
	scenarioTpl := fasttemplate.New(scenarioTemplate, "{{", "}}")

	currentFeature := ""
	for _, scenario := range suite.Scenarios {
		if scenario.Feature != currentFeature {
			currentFeature = scenario.Feature
			b.WriteString(`<div class="feature">` + html.EscapeString(currentFeature) + "</div>\n")
		}
		class := "passed"
		if scenario.Status != StatusPassed {
			class = "failed"
		}
		b.WriteString(scenarioTpl.ExecuteString(map[string]interface{}{
			"class":    class,
			"name":     html.EscapeString(scenario.Name),
			"tags":     html.EscapeString(strings.Join(scenario.Tags, " ")),
			"status":   string(scenario.Status),
			"duration": scenario.Duration.Round(time.Millisecond).String(),
			"steps":    renderSteps(scenario.Steps),
		}))
	}
	return b.String()
}

func renderSteps(steps []StepResult) string {
	var b strings.Builder
	stepTpl := fasttemplate.New(stepTemplate, "{{", "}}")

	for _, step := range steps {
		errHTML := ""
		if step.Error != "" {
			errHTML = `<div class="err">` + html.EscapeString(step.Error) + "</div>"
		}
		b.WriteString(stepTpl.ExecuteString(map[string]interface{}{
			"symbol":    statusSymbol(step.Status),
			"name":      html.EscapeString(step.Name),
			"duration":  step.Duration.Round(time.Millisecond).String(),
			"error":     errHTML,
			"exchanges": renderExchanges(step),
		}))
	}
	return b.String()
}

func renderExchanges(step StepResult) string {
	var b strings.Builder
	exchangeTpl := fasttemplate.New(exchangeTemplate, "{{", "}}")

	for _, ex := range step.Exchanges {
		requestBody := ""
		if ex.RequestBody != "" {
			requestBody = "\n<pre>" + html.EscapeString(ex.RequestBody) + "</pre>"
		}
		responseBody := ""
		if ex.ResponseBody != "" {
			responseBody = "\n<pre>" + html.EscapeString(ex.ResponseBody) + "</pre>"
		}
		b.WriteString(exchangeTpl.ExecuteString(map[string]interface{}{
			"method":          html.EscapeString(ex.Method),
			"url":             html.EscapeString(ex.URL),
			"status":          html.EscapeString(ex.Status),
			"duration":        ex.Duration.Round(time.Millisecond).String(),
			"requestHeaders":  html.EscapeString(formatHeaders(ex.RequestHeaders)),
			"requestBody":     requestBody,
			"responseHeaders": html.EscapeString(formatHeaders(ex.ResponseHeaders)),
			"responseBody":    responseBody,
		}))
	}
	return b.String()
}

func formatHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return "(none)"
	}
	pairs := make([]string, 0, len(headers))
	for name, value := range headers {
		pairs = append(pairs, name+": "+value)
	}
	return strings.Join(pairs, ", ")
}
