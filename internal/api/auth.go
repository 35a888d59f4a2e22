// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/checkings/checkings/internal/log"
)

// extractToken retrieves the API token from the request.
// 1. Authorization: Bearer <token>
// 2. Header: X-API-Token
// Cookies and query parameters are not accepted; this is a JSON API and
// query tokens leak into proxy logs.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return r.Header.Get("X-API-Token")
}

// authorizeToken returns true if got matches expected using
// constant-time comparison. Empty tokens are always unauthorized.
func authorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// requireAuth enforces the API token on the wrapped routes. With no
// token configured the API is open and the middleware passes through.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := log.WithComponentFromContext(r.Context(), "auth")

		reqToken := extractToken(r)
		if reqToken == "" {
			logger.Warn().Str("event", "auth.missing_header").Msg("authorization header missing")
			s.audit.AuthMissing(r.RemoteAddr, r.URL.Path)
			writeUnauthorized(w)
			return
		}

		if !authorizeToken(reqToken, s.token) {
			logger.Warn().Str("event", "auth.invalid_token").Msg("invalid api token")
			s.audit.AuthFailure(r.RemoteAddr, r.URL.Path, "invalid token")
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
