// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
)

// devOrigins are allowed when no origin list is configured, so a local
// frontend works against a default daemon without extra flags.
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:8080",
}

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-API-Token, X-Request-ID"
)

// CORS sets Cross-Origin Resource Sharing headers against a strict allow
// list. "*" in the list allows every origin; an empty list falls back to
// the local development origins. Unlisted origins receive no allow header
// at all, which makes the browser block the response.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = devOrigins
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	allowAll := allowed["*"]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch origin := r.Header.Get("Origin"); {
			case origin == "":
				// curl and backend-to-backend calls carry no Origin.
				h.Set("Access-Control-Allow-Origin", "*")
			case allowAll || allowed[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
			}

			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", "600")
			h.Set("Vary", "Origin, Access-Control-Request-Method, Access-Control-Request-Headers")

			if r.Method == http.MethodOptions {
				h.Set("Allow", corsMethods)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
