package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkit/internal/common"
)

const serviceName = "auth-service"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// tokenUser is the claims-derived identity returned by /validate. Unlike
// /me it is not re-resolved against the store.
type tokenUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account registered", "username", summary.Username)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    summary,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, summary, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Login successful", "username", summary.Username)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    summary,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {

	var req validateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false,
			"error": "no token provided",
		})
		return
	}

	claims, err := s.auth.ValidateToken(req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"valid": false,
			"error": "invalid or expired token",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  tokenUser{UserID: claims.UserID, Username: claims.Username},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		// requireAuth always attaches the identity; reaching this point
		// means the handler was mounted without the gate
		s.writeServiceError(w, r, common.ErrMissingToken)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": identity})
}

// writeServiceError maps service-layer sentinels to HTTP responses. Anything
// unrecognized is logged server-side and reported as a bare internal error so
// that no store or driver detail leaks to the client.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "username or email already exists"})
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, common.ErrMissingToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization header is missing"})
	case errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
	default:
		s.logger.Error(r.Context(), "Request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v. On failure it writes a 400 and
// reports false; the caller should return immediately.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
