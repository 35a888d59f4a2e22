// SPDX-License-Identifier: MIT

package middleware

import "net/http"

// statusWriter lets response-observing middlewares see the final status
// code and body size. The first WriteHeader wins; later calls pass through
// without changing the recorded status, matching net/http semantics.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(status int) {
	if !sw.wrote {
		sw.status = status
		sw.wrote = true
	}
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	// An implicit 200 from the underlying writer keeps the default status.
	sw.wrote = true
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// isProbePath reports whether path belongs to a health or metrics probe.
// Probe traffic logs at debug and is never traced; at typical scrape
// intervals it would otherwise dominate both streams.
func isProbePath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/livez", "/metrics":
		return true
	}
	return false
}
