package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSONWriter saves the suite result as a timestamped JSON file for machine
// consumption.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates a writer that saves reports under dir.
func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{dir: dir}
}

// Write marshals the suite result and returns the path of the written file.
func (w *JSONWriter) Write(suite *SuiteResult) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report to JSON: %w", err)
	}

	filename := fmt.Sprintf("apibdd-report-%s.json", time.Now().Format("20060102-150405"))
	fullPath := filepath.Join(w.dir, filename)
	if err := os.WriteFile(fullPath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return fullPath, nil
}
