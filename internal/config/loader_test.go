package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to write a config file the way users author it
func writeConfigFile(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, "apibdd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultOnly(t *testing.T) {
	tempDir := t.TempDir()

	// Point the working directory lookup at an empty temp dir so no stray
	// apibdd.yaml is picked up.
	originalGetwd := osGetwd
	defer func() { osGetwd = originalGetwd }()
	osGetwd = func() (string, error) { return tempDir, nil }

	cfg, err := Load("")
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.DefaultEnvironment, cfg.DefaultEnvironment)
	assert.Equal(t, defaults.Environments["dev"].BaseURL, cfg.Environments["dev"].BaseURL)
	assert.Equal(t, defaults.Logging.MaxBodyLength, cfg.Logging.MaxBodyLength)
	assert.ElementsMatch(t, DefaultSensitiveHeaders, cfg.Logging.SensitiveHeaders)
}

func TestLoad_FileOverride(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
defaultEnvironment: staging
environments:
  staging:
    baseURL: https://staging.example.com
    timeout: 10s
    auth:
      type: bearer
      username: svc-user
      password: svc-pass
      tokenEndpoint: /api/auth/token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.DefaultEnvironment)
	environment, name := cfg.ResolveEnvironment("")
	assert.Equal(t, "staging", name)
	assert.Equal(t, "https://staging.example.com", environment.BaseURL)
	assert.Equal(t, 10*time.Second, environment.Timeout)
	assert.Equal(t, AuthBearer, environment.Auth.Type)
	// Defaults survive the overlay.
	assert.Equal(t, DefaultReportDir, cfg.Report.Dir)
	assert.Equal(t, DefaultMaxBodyLength, cfg.Logging.MaxBodyLength)
	assert.True(t, cfg.Report.HTML)
	assert.True(t, cfg.Report.JSON)
	assert.True(t, cfg.Logging.CaptureHTTP)
}

func TestLoad_ReportTogglesOff(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
report:
  html: false
  json: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Report.HTML)
	assert.False(t, cfg.Report.JSON)
	// Settings the file does not mention keep their defaults.
	assert.Equal(t, DefaultReportDir, cfg.Report.Dir)
	assert.Equal(t, DefaultReportTitle, cfg.Report.Title)
}

func TestLoad_LoggingLevelOnlyKeepsCaptureDefaults(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.CaptureHTTP)
	assert.True(t, cfg.Logging.LogHeaders)
	assert.True(t, cfg.Logging.LogBodies)
	assert.True(t, cfg.Logging.PrettyJSON)
	assert.Equal(t, DefaultMaxBodyLength, cfg.Logging.MaxBodyLength)
	assert.ElementsMatch(t, DefaultSensitiveHeaders, cfg.Logging.SensitiveHeaders)
}

func TestLoad_LoggingCaptureOff(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
logging:
  captureHTTP: false
  maxBodyLength: 512
  sensitiveHeaders:
    - X-Session-Id
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Logging.CaptureHTTP)
	assert.True(t, cfg.Logging.LogHeaders)
	assert.Equal(t, 512, cfg.Logging.MaxBodyLength)
	assert.Equal(t, []string{"X-Session-Id"}, cfg.Logging.SensitiveHeaders)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	originalGetwd := osGetwd
	defer func() { osGetwd = originalGetwd }()
	osGetwd = func() (string, error) { return tempDir, nil }

	t.Setenv("APIBDD_BASE_URL", "http://10.0.0.5:9999")
	t.Setenv("APIBDD_AUTH_USERNAME", "ci-user")
	t.Setenv("APIBDD_AUTH_PASSWORD", "ci-pass")

	cfg, err := Load("")
	require.NoError(t, err)

	environment, _ := cfg.ResolveEnvironment("dev")
	assert.Equal(t, "http://10.0.0.5:9999", environment.BaseURL)
	assert.Equal(t, "ci-user", environment.Auth.Username)
	assert.Equal(t, "ci-pass", environment.Auth.Password)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("API_SECRET", "s3cret")

	path := writeConfigFile(t, t.TempDir(), `
defaultEnvironment: dev
environments:
  dev:
    baseURL: http://localhost:8080
    auth:
      type: basic
      username: bot
      password: ${API_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	environment, _ := cfg.ResolveEnvironment("dev")
	assert.Equal(t, "s3cret", environment.Auth.Password)
}

func TestLoad_InvalidAuthType(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
defaultEnvironment: dev
environments:
  dev:
    baseURL: http://localhost:8080
    auth:
      type: kerberos
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolveEnvironment_UnknownFallsBack(t *testing.T) {
	cfg := GetDefaultConfig()

	environment, name := cfg.ResolveEnvironment("does-not-exist")
	assert.Equal(t, DefaultEnvironmentName, name)
	assert.Equal(t, DefaultBaseURL, environment.BaseURL)
	// Zero-valued settings are filled in.
	assert.Equal(t, DefaultTimeout, environment.Timeout)
}

func TestResolveEnvironment_DefaultsAuthType(t *testing.T) {
	cfg := Config{
		DefaultEnvironment: "dev",
		Environments: map[string]Environment{
			"dev": {BaseURL: "http://localhost:8080"},
		},
	}

	environment, _ := cfg.ResolveEnvironment("dev")
	assert.Equal(t, AuthNone, environment.Auth.Type)
}
