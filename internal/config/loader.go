package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"apibdd/pkg/logging"
)

// For mocking in tests
var osGetwd = os.Getwd

const configFileName = "apibdd.yaml"

// envOverrides holds environment-variable overrides applied after file load.
// Only connection and credential settings are overridable this way; the
// credentials are the ones most often injected by CI.
type envOverrides struct {
	Environment string `env:"APIBDD_ENV"`
	BaseURL     string `env:"APIBDD_BASE_URL"`
	AuthType    string `env:"APIBDD_AUTH_TYPE"`
	Username    string `env:"APIBDD_AUTH_USERNAME"`
	Password    string `env:"APIBDD_AUTH_PASSWORD"`
	Token       string `env:"APIBDD_AUTH_TOKEN"`
	ReportDir   string `env:"APIBDD_REPORT_DIR"`
}

// Load builds the configuration by layering defaults, the optional config
// file, and environment-variable overrides, then validates the result.
// An empty path means "use ./apibdd.yaml if it exists".
func Load(path string) (Config, error) {
	cfg := GetDefaultConfig()

	resolved, explicit := path, path != ""
	if !explicit {
		wd, err := osGetwd()
		if err == nil {
			resolved = wd + string(os.PathSeparator) + configFileName
		}
	}

	if resolved != "" {
		if _, err := os.Stat(resolved); err == nil {
			fileCfg, err := loadFromFile(resolved)
			if err != nil {
				return Config{}, fmt.Errorf("error loading config from %s: %w", resolved, err)
			}
			cfg = merge(cfg, fileCfg)
			logging.Info("config", "Configuration loaded from %s", resolved)
		} else if explicit {
			return Config{}, fmt.Errorf("config file not found: %s", resolved)
		} else {
			logging.Debug("config", "No config file at %s, using defaults", resolved)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	expand(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration structure against its validation tags.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ResolveEnvironment returns the named environment, falling back to the
// default environment when the name is unknown or empty.
func (c Config) ResolveEnvironment(name string) (Environment, string) {
	if name == "" {
		name = c.DefaultEnvironment
	}
	if environment, ok := c.Environments[name]; ok {
		return withEnvDefaults(environment), name
	}
	logging.Warn("config", "Unknown environment %q, falling back to %q", name, c.DefaultEnvironment)
	return withEnvDefaults(c.Environments[c.DefaultEnvironment]), c.DefaultEnvironment
}

// withEnvDefaults fills in zero-valued environment settings.
func withEnvDefaults(environment Environment) Environment {
	if environment.Timeout <= 0 {
		environment.Timeout = DefaultTimeout
	}
	if environment.Auth.Type == "" {
		environment.Auth.Type = AuthNone
	}
	return environment
}

// fileConfig mirrors Config for YAML loading. Toggles and bounded numbers
// are pointers so an omitted key can be told apart from an explicit false
// or zero when merging over the defaults.
type fileConfig struct {
	DefaultEnvironment string                 `yaml:"defaultEnvironment"`
	Environments       map[string]Environment `yaml:"environments"`
	Logging            fileLoggingConfig      `yaml:"logging"`
	Report             fileReportConfig       `yaml:"report"`
	DataDir            string                 `yaml:"dataDir"`
}

type fileLoggingConfig struct {
	Level            string   `yaml:"level"`
	CaptureHTTP      *bool    `yaml:"captureHTTP"`
	LogHeaders       *bool    `yaml:"logHeaders"`
	LogBodies        *bool    `yaml:"logBodies"`
	PrettyJSON       *bool    `yaml:"prettyJSON"`
	MaxBodyLength    *int     `yaml:"maxBodyLength"`
	SensitiveHeaders []string `yaml:"sensitiveHeaders"`
}

type fileReportConfig struct {
	Dir   string `yaml:"dir"`
	Title string `yaml:"title"`
	HTML  *bool  `yaml:"html"`
	JSON  *bool  `yaml:"json"`
}

// loadFromFile loads a config overlay from a YAML file.
func loadFromFile(filePath string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fileConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

// merge applies the file overlay onto the base config field by field, so
// settings the file does not mention keep their defaults.
func merge(base Config, overlay fileConfig) Config {
	merged := base

	if overlay.DefaultEnvironment != "" {
		merged.DefaultEnvironment = overlay.DefaultEnvironment
	}
	if len(overlay.Environments) > 0 {
		merged.Environments = make(map[string]Environment, len(overlay.Environments))
		for name, environment := range overlay.Environments {
			merged.Environments[name] = environment
		}
	}
	if overlay.DataDir != "" {
		merged.DataDir = overlay.DataDir
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.CaptureHTTP != nil {
		merged.Logging.CaptureHTTP = *overlay.Logging.CaptureHTTP
	}
	if overlay.Logging.LogHeaders != nil {
		merged.Logging.LogHeaders = *overlay.Logging.LogHeaders
	}
	if overlay.Logging.LogBodies != nil {
		merged.Logging.LogBodies = *overlay.Logging.LogBodies
	}
	if overlay.Logging.PrettyJSON != nil {
		merged.Logging.PrettyJSON = *overlay.Logging.PrettyJSON
	}
	if overlay.Logging.MaxBodyLength != nil {
		merged.Logging.MaxBodyLength = *overlay.Logging.MaxBodyLength
	}
	if overlay.Logging.SensitiveHeaders != nil {
		merged.Logging.SensitiveHeaders = overlay.Logging.SensitiveHeaders
	}

	if overlay.Report.Dir != "" {
		merged.Report.Dir = overlay.Report.Dir
	}
	if overlay.Report.Title != "" {
		merged.Report.Title = overlay.Report.Title
	}
	if overlay.Report.HTML != nil {
		merged.Report.HTML = *overlay.Report.HTML
	}
	if overlay.Report.JSON != nil {
		merged.Report.JSON = *overlay.Report.JSON
	}

	return merged
}

// applyEnvOverrides applies APIBDD_* environment variables on top of the
// loaded configuration.
func applyEnvOverrides(cfg *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env overrides: %w", err)
	}

	if overrides.Environment != "" {
		cfg.DefaultEnvironment = overrides.Environment
	}
	if overrides.ReportDir != "" {
		cfg.Report.Dir = overrides.ReportDir
	}

	name := cfg.DefaultEnvironment
	environment, ok := cfg.Environments[name]
	if !ok {
		return nil
	}
	if overrides.BaseURL != "" {
		environment.BaseURL = overrides.BaseURL
	}
	if overrides.AuthType != "" {
		environment.Auth.Type = AuthType(overrides.AuthType)
	}
	if overrides.Username != "" {
		environment.Auth.Username = overrides.Username
	}
	if overrides.Password != "" {
		environment.Auth.Password = overrides.Password
	}
	if overrides.Token != "" {
		environment.Auth.Token = overrides.Token
	}
	cfg.Environments[name] = environment
	return nil
}

// expand resolves ${VAR} references in string settings against the process
// environment so secrets can live outside the config file.
func expand(cfg *Config) {
	for name, environment := range cfg.Environments {
		environment.BaseURL = os.ExpandEnv(environment.BaseURL)
		environment.Auth.Username = os.ExpandEnv(environment.Auth.Username)
		environment.Auth.Password = os.ExpandEnv(environment.Auth.Password)
		environment.Auth.Token = os.ExpandEnv(environment.Auth.Token)
		environment.Auth.TokenEndpoint = os.ExpandEnv(environment.Auth.TokenEndpoint)
		for key, value := range environment.Headers {
			environment.Headers[key] = os.ExpandEnv(value)
		}
		cfg.Environments[name] = environment
	}
}
