// Package steps implements the Gherkin step definitions. A fresh Steps value
// is created per scenario so parallel scenarios stay isolated.
package steps

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cucumber/godog"

	"apibdd/internal/auth"
	"apibdd/internal/client"
	"apibdd/internal/config"
	"apibdd/internal/data"
	"apibdd/internal/testctx"
)

// uniqueSeq disambiguates generated usernames and emails across parallel
// scenarios.
var uniqueSeq atomic.Int64

// Deps bundles the per-run collaborators shared by every scenario.
type Deps struct {
	Environment config.Environment
	Logging     config.LoggingConfig
	Data        *data.Provider
}

// Steps holds the per-scenario state behind the step definitions.
type Steps struct {
	deps   Deps
	client *client.Client
	auth   *auth.Manager
	ctx    *testctx.Context

	// pendingUser and pendingPayment are request bodies under construction.
	pendingUser    map[string]interface{}
	pendingPayment map[string]interface{}
}

// New creates the scenario state and wires the HTTP client to the
// authentication manager.
func New(deps Deps) *Steps {
	authManager := auth.NewManager(deps.Environment)
	httpClient := client.New(deps.Environment, deps.Logging)
	httpClient.SetAuthenticator(authManager)

	return &Steps{
		deps:   deps,
		client: httpClient,
		auth:   authManager,
		ctx:    testctx.New(),
	}
}

// Client exposes the scenario's HTTP client so the runner can attach exchange
// capture.
func (s *Steps) Client() *client.Client {
	return s.client
}

// Context exposes the scenario context.
func (s *Steps) Context() *testctx.Context {
	return s.ctx
}

// Reset clears all scenario state.
func (s *Steps) Reset() {
	s.ctx.Clear()
	s.auth.Clear()
	s.pendingUser = nil
	s.pendingPayment = nil
}

// Register wires every step definition into the scenario context.
func (s *Steps) Register(sc *godog.ScenarioContext) {
	s.registerCommon(sc)
	s.registerUsers(sc)
	s.registerPayments(sc)
}

// send executes a request and records the response in the scenario context.
// Step assertions never fail here; HTTP errors do.
func (s *Steps) send(ctx context.Context, method, endpoint string, body interface{}) error {
	builder := s.client.NewRequest().Endpoint(endpoint)
	if body != nil {
		builder.Body(body)
	}

	var (
		resp *client.Response
		err  error
	)
	switch strings.ToUpper(method) {
	case "GET":
		resp, err = builder.Get(ctx)
	case "POST":
		resp, err = builder.Post(ctx)
	case "PUT":
		resp, err = builder.Put(ctx)
	case "PATCH":
		resp, err = builder.Patch(ctx)
	case "DELETE":
		resp, err = builder.Delete(ctx)
	default:
		return fmt.Errorf("unsupported HTTP method %q", method)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	s.ctx.SetResponse(endpoint, body, resp)
	return nil
}

// uniqueSuffix returns a short identifier unique within the process.
func uniqueSuffix() string {
	return fmt.Sprintf("%d", uniqueSeq.Add(1))
}
