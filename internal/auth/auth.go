// Package auth manages request authentication for the harness. It supports
// basic credentials and bearer tokens, either static or obtained from a token
// endpoint, with JWT-aware expiry tracking.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"apibdd/internal/config"
	"apibdd/pkg/logging"
)

// Manager holds the active authentication state for a client. It is safe for
// concurrent use by parallel scenarios.
type Manager struct {
	cfg     config.AuthConfig
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	mode   config.AuthType
	basic  basicCredentials
	bearer bearerToken
}

// NewManager creates an authentication manager for the environment. The
// manager performs its own token-endpoint requests so it owns a small HTTP
// client configured with the environment timeout.
func NewManager(environment config.Environment) *Manager {
	timeout := environment.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	m := &Manager{
		cfg:     environment.Auth,
		baseURL: environment.BaseURL,
		client:  &http.Client{Timeout: timeout},
		mode:    config.AuthNone,
	}
	if environment.Auth.Token != "" {
		m.SetToken(environment.Auth.Token)
	}
	return m
}

// Authenticate configures authentication using the given credentials. The
// scheme is taken from the environment configuration.
func (m *Manager) Authenticate(ctx context.Context, username, password string) error {
	switch m.cfg.Type {
	case config.AuthBasic:
		m.AuthenticateBasic(username, password)
		return nil
	case config.AuthBearer:
		return m.AuthenticateBearer(ctx, username, password)
	default:
		logging.Warn("auth", "Auth type %q configured, no authentication applied", m.cfg.Type)
		m.Clear()
		return nil
	}
}

// AuthenticateBasic configures basic authentication with the credentials.
func (m *Manager) AuthenticateBasic(username, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basic = basicCredentials{username: username, password: password}
	m.mode = config.AuthBasic
	logging.Info("auth", "Basic authentication configured for user: %s", username)
}

// AuthenticateBearer obtains a bearer token from the configured token
// endpoint and stores it for subsequent requests.
func (m *Manager) AuthenticateBearer(ctx context.Context, username, password string) error {
	endpoint := m.cfg.TokenEndpoint
	if endpoint == "" {
		endpoint = defaultTokenEndpoint
	}

	token, err := obtainToken(ctx, m.client, m.baseURL, endpoint, username, password)
	if err != nil {
		return fmt.Errorf("obtain bearer token: %w", err)
	}

	m.SetToken(token)
	logging.Info("auth", "Bearer token obtained from %s", endpoint)
	return nil
}

// SetToken installs a bearer token directly. Expiry is taken from the token's
// exp claim when it parses as a JWT, otherwise a default validity is assumed.
func (m *Manager) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bearer = newBearerToken(token, time.Now())
	m.mode = config.AuthBearer
}

// Clear removes all authentication state.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basic = basicCredentials{}
	m.bearer = bearerToken{}
	m.mode = config.AuthNone
	logging.Debug("auth", "Authentication cleared")
}

// IsAuthenticated reports whether usable credentials are configured. An
// expired bearer token counts as absent.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case config.AuthBasic:
		return m.basic.username != ""
	case config.AuthBearer:
		return m.bearer.valid(time.Now())
	default:
		return false
	}
}

// Token returns the current bearer token, empty when none is set.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bearer.token
}

// Apply injects the active credentials into the request. It implements the
// client.Authenticator interface.
func (m *Manager) Apply(_ context.Context, req *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.mode {
	case config.AuthBasic:
		m.basic.apply(req)
	case config.AuthBearer:
		if !m.bearer.valid(time.Now()) {
			return fmt.Errorf("bearer token expired at %s", m.bearer.expiry.Format(time.RFC3339))
		}
		req.Header.Set("Authorization", "Bearer "+m.bearer.token)
	}
	return nil
}
