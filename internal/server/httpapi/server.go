// Package httpapi is the HTTP transport of the auth service: route
// registration, request/response encoding, and the bearer-token gate for
// protected routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkit/internal/logging"
	"github.com/dmitrijs2005/authkit/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	logger  logging.Logger
	auth    *services.AuthService
}

func NewServer(address string, l logging.Logger, auth *services.AuthService) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		auth:    auth,
	}
}

// Routes assembles the public handler tree. Every request passes through the
// logging middleware; only /me sits behind the token gate.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.Handle("GET /me", s.requireAuth(http.HandlerFunc(s.handleMe)))

	return s.withRequestLog(mux)
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
