// SPDX-License-Identifier: MIT

package daemon

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/checkings/checkings/internal/config"
)

// Deps carries everything the Manager serves: the handler surfaces and
// the logger they share. One struct keeps the daemon wiring explicit
// and tests cheap.
type Deps struct {
	Logger zerolog.Logger

	// Config is the resolved application configuration.
	Config config.AppConfig

	// APIHandler serves the whole API surface, probes included.
	APIHandler http.Handler

	// MetricsHandler plus MetricsAddr expose metrics on a separate
	// listener so scrapes bypass the API middleware. Optional; the API
	// router serves /metrics either way.
	MetricsHandler http.Handler
	MetricsAddr    string
}

// Validate checks that the dependencies are usable. Config shape is the
// loader's business; only the hard requirements are checked here.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
