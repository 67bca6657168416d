// Package mockapi is an in-process mock of the Payment Initiation and user
// management API the harness targets. The mock command serves it for local
// development and the step packages run their suites against it.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"apibdd/pkg/logging"
)

// Options tune the mock server.
type Options struct {
	// Addr is the listen address, for example ":8080".
	Addr string
	// Latency is an artificial delay added to every request.
	Latency time.Duration
	// SigningKey signs issued JWTs. A default is used when empty.
	SigningKey string
}

// Server is the mock API. All state is in memory.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	latency    time.Duration
	signingKey []byte

	mu       sync.Mutex
	users    map[string]*user
	payments map[string]*payment
	userSeq  int
	paySeq   int
}

// NewServer creates a mock server with a seeded test account.
func NewServer(opts Options) *Server {
	key := opts.SigningKey
	if key == "" {
		key = "apibdd-mock-signing-key"
	}

	s := &Server{
		router:     chi.NewRouter(),
		latency:    opts.Latency,
		signingKey: []byte(key),
		users:      make(map[string]*user),
		payments:   make(map[string]*payment),
	}
	s.seedUsers()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(s.recovery)
	s.router.Use(s.slowdown)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/service-info", s.handleServiceInfo)
	s.router.Post("/api/auth/token", s.handleToken)

	s.router.Route("/api/users", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/{userId}", s.handleGetUser)
		r.Put("/{userId}", s.handleReplaceUser)
		r.Patch("/{userId}", s.handlePatchUser)
		r.Delete("/{userId}", s.handleDeleteUser)
	})

	s.router.Route("/payment-initiation", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListPayments)
		r.Post("/initiate", s.handleInitiatePayment)
		r.Get("/{paymentId}", s.handleGetPayment)
		r.Put("/{paymentId}/update", s.handleUpdatePayment)
		r.Post("/{paymentId}/submit", s.handleSubmitPayment)
		r.Post("/{paymentId}/approve", s.handleApprovePayment)
		r.Post("/{paymentId}/cancel", s.handleCancelPayment)
		r.Post("/{paymentId}/suspend", s.handleSuspendPayment)
		r.Post("/{paymentId}/resume", s.handleResumePayment)
	})
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	logging.Info("mockapi", "Mock API listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("mock server error: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	logging.Info("mockapi", "Mock API shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Error("mockapi", nil, "Panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) slowdown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func (s *Server) handleServiceInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"serviceName": "payment-initiation",
		"version":     "1.0.0",
		"status":      "operational",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, errs []string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"errors": errs,
	})
}

func decodeJSON(r *http.Request, into interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
