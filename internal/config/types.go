package config

import (
	"time"
)

// Config is the top-level configuration structure for apibdd.
type Config struct {
	// DefaultEnvironment names the environment used when --env is not given.
	DefaultEnvironment string `yaml:"defaultEnvironment" validate:"required"`
	// Environments maps environment names (dev, staging, prod, pi, ...) to
	// their connection settings.
	Environments map[string]Environment `yaml:"environments" validate:"required,dive"`
	// Logging controls harness logging and HTTP capture behaviour.
	Logging LoggingConfig `yaml:"logging"`
	// Report controls report generation.
	Report ReportConfig `yaml:"report"`
	// DataDir is the directory holding test data files (users.json, ...).
	DataDir string `yaml:"dataDir"`
}

// Environment describes a single target environment.
type Environment struct {
	// BaseURL is the root URL all endpoints are resolved against.
	BaseURL string `yaml:"baseURL" validate:"required,url"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`
	// Auth configures request authentication.
	Auth AuthConfig `yaml:"auth"`
}

// AuthType identifies the authentication scheme for an environment.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
)

// AuthConfig configures how requests are authenticated.
type AuthConfig struct {
	Type AuthType `yaml:"type" validate:"omitempty,oneof=none basic bearer"`
	// Username and Password are used for basic auth and for obtaining
	// bearer tokens from the token endpoint.
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// TokenEndpoint is POSTed to with the credentials to obtain a bearer
	// token when Token is not set.
	TokenEndpoint string `yaml:"tokenEndpoint,omitempty"`
	// Token is a static bearer token.
	Token string `yaml:"token,omitempty"`
}

// LoggingConfig controls harness logging and HTTP request/response capture.
type LoggingConfig struct {
	// Level is the log level: debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// CaptureHTTP enables recording of request/response details for reports.
	CaptureHTTP bool `yaml:"captureHTTP"`
	// LogHeaders includes headers in captured requests/responses.
	LogHeaders bool `yaml:"logHeaders"`
	// LogBodies includes bodies in captured requests/responses.
	LogBodies bool `yaml:"logBodies"`
	// PrettyJSON re-indents JSON bodies before capture.
	PrettyJSON bool `yaml:"prettyJSON"`
	// MaxBodyLength truncates captured bodies beyond this many bytes.
	MaxBodyLength int `yaml:"maxBodyLength" validate:"omitempty,min=0"`
	// SensitiveHeaders are masked in logs and reports.
	SensitiveHeaders []string `yaml:"sensitiveHeaders,omitempty"`
}

// ReportConfig controls report generation.
type ReportConfig struct {
	// Dir is the directory reports are written into.
	Dir string `yaml:"dir"`
	// Title is used as the HTML report document title.
	Title string `yaml:"title"`
	// HTML enables the HTML report writer.
	HTML bool `yaml:"html"`
	// JSON enables the JSON report writer.
	JSON bool `yaml:"json"`
}
