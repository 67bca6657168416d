package config

import (
	"time"
)

// Default values used when no configuration file is present or when a file
// omits a setting.
const (
	DefaultEnvironmentName = "dev"
	DefaultBaseURL         = "http://localhost:8080"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxBodyLength   = 10000
	DefaultReportDir       = "reports"
	DefaultReportTitle     = "API Test Execution Report"
)

// DefaultSensitiveHeaders are always masked in logs and reports.
var DefaultSensitiveHeaders = []string{"Authorization", "X-API-Key", "Cookie"}

// GetDefaultConfig returns the default configuration for apibdd.
func GetDefaultConfig() Config {
	return Config{
		DefaultEnvironment: DefaultEnvironmentName,
		Environments: map[string]Environment{
			DefaultEnvironmentName: {
				BaseURL: DefaultBaseURL,
				Timeout: DefaultTimeout,
				Auth: AuthConfig{
					Type:     AuthBasic,
					Username: "testuser",
					Password: "testpass",
				},
			},
		},
		Logging: LoggingConfig{
			Level:            "info",
			CaptureHTTP:      true,
			LogHeaders:       true,
			LogBodies:        true,
			PrettyJSON:       true,
			MaxBodyLength:    DefaultMaxBodyLength,
			SensitiveHeaders: append([]string(nil), DefaultSensitiveHeaders...),
		},
		Report: ReportConfig{
			Dir:   DefaultReportDir,
			Title: DefaultReportTitle,
			HTML:  true,
			JSON:  true,
		},
		DataDir: "testdata",
	}
}
