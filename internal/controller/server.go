// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"driveplane/internal/controller/handlers"
	"driveplane/internal/controller/middleware"
	"driveplane/internal/store"
)

// Options wires the server's dependencies.
type Options struct {
	Addr   string
	Store  handlers.StoreFactory
	Engine handlers.Engine
	Logger *slog.Logger
	// SystemSecret guards account creation. Empty disables it.
	SystemSecret string
	// RateLimiter throttles mutating routes per account. Nil disables limiting.
	RateLimiter *middleware.RateLimiter
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Notifications is drained on shutdown, after in-flight requests finish.
	Notifications Closer
}

// Closer is a dependency that flushes pending work on shutdown.
type Closer interface {
	Close(ctx context.Context) error
}

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer    *http.Server
	notifications Closer
}

// New creates a new controller server.
func New(opts Options) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      NewHandler(opts),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		notifications: opts.Notifications,
	}
}

// NewHandler builds the routed handler chain.
func NewHandler(opts Options) http.Handler {
	h := handlers.New(opts.Store, opts.Engine, opts.Logger)
	authMW := middleware.AuthMiddleware(opts.Store)
	adminMW := middleware.RequireRole(store.RoleAdmin)
	limitMW := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		limitMW = opts.RateLimiter.Middleware()
	}

	// authed reads; mutating also rate limits; admin also checks the role.
	authed := func(fn http.HandlerFunc) http.Handler {
		return authMW(fn)
	}
	mutating := func(fn http.HandlerFunc) http.Handler {
		return authMW(limitMW(fn))
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authMW(adminMW(limitMW(fn)))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	mux.Handle("POST /accounts", middleware.RequireInternalAuth(opts.SystemSecret)(http.HandlerFunc(h.CreateAccount)))

	// Catalog and policy
	mux.Handle("GET /tiers", authed(h.ListTiers))
	mux.Handle("PUT /tiers/{name}", admin(h.PutTier))
	mux.Handle("POST /products", admin(h.CreateProduct))

	// Sessions
	mux.Handle("POST /sessions", mutating(h.StartSession))
	mux.Handle("GET /sessions/{id}", authed(h.GetSession))
	mux.Handle("GET /sessions/{id}/progress", authed(h.GetProgress))
	mux.Handle("GET /sessions/{id}/ledger", authed(h.GetLedger))
	mux.Handle("POST /sessions/{id}/reset", admin(h.ResetSession))
	mux.Handle("POST /sessions/{id}/combos/preview", admin(h.PreviewCombo))
	mux.Handle("POST /sessions/{id}/combos", admin(h.InsertCombo))

	// Tasks
	mux.Handle("POST /tasks/{id}/purchase", mutating(h.BeginPurchase))
	mux.Handle("POST /tasks/{id}/complete", mutating(h.CompleteTask))
	mux.Handle("POST /tasks/{id}/rating", mutating(h.SubmitRating))

	return middleware.RequestID(middleware.Tracing(mux))
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server, then flushes queued notifications.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.notifications != nil {
		if cerr := s.notifications.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
