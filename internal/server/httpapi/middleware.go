package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkit/internal/common"
	"github.com/dmitrijs2005/authkit/internal/server/services"
	"github.com/google/uuid"
)

type identityContextKey struct{}

// IdentityFromContext returns the account summary attached by requireAuth.
func IdentityFromContext(ctx context.Context) (*services.AccountSummary, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*services.AccountSummary)
	return identity, ok
}

// requireAuth is the gate in front of protected routes. It extracts the
// bearer token, verifies it and re-resolves the account, then passes control
// downstream with the resolved identity on the request context. Each request
// is judged independently; there is no state between requests.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.writeServiceError(w, r, common.ErrMissingToken)
			return
		}

		identity, err := s.auth.CurrentUser(r.Context(), token)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

// statusRecorder captures the status code written by the downstream handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withRequestLog tags every request with a generated id, echoes it in the
// X-Request-Id header, and logs method, path, status and duration on
// completion. Bodies and headers are never logged.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "Request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
