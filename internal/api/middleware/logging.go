// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkings/checkings/internal/log"
)

// Logging emits one structured access log line per request, after the
// handler completes, so the final status and full latency are captured.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			logger := log.WithComponentFromContext(r.Context(), "http")
			logger.WithLevel(requestLevel(r.URL.Path, sw.status)).
				Str("event", "http.request").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int("bytes", sw.bytes).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("request completed")
		})
	}
}

// requestLevel keeps probe chatter at debug and raises server errors so
// they stand out in the info stream.
func requestLevel(path string, status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case isProbePath(path):
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
