// Package endpoints contains all HTTP API endpoints. Each endpoint pairs a
// route with a CLI command so the HTTP surface and the command line stay in
// sync.
package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/biaslens/biaslens/internal/auth"
	"github.com/biaslens/biaslens/internal/svcctx"
)

// maxRequestBody caps request payloads at 1 MiB. Analysis inputs are prose;
// anything larger is a mistake or abuse.
const maxRequestBody = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON decodes a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// bearerToken extracts the token from an Authorization header, or "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// errBadToken reports a token that was presented but did not authenticate.
var errBadToken = errors.New("invalid or expired token")

// userFromRequest resolves the request's session token to a user ID.
// No token means an anonymous request (ID 0, no error); a token that fails
// validation is an error so callers can return 401.
func userFromRequest(r *http.Request) (int64, error) {
	token := bearerToken(r)
	if token == "" {
		return 0, nil
	}

	authSvc := svcctx.AuthFrom(r.Context())
	if authSvc == nil {
		return 0, errors.New("auth service not initialized")
	}

	userID, err := authSvc.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return 0, errBadToken
		}
		return 0, err
	}
	return userID, nil
}
