package api

import (
	"net/http"
	"time"

	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 60 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 120 * time.Second
)

// NewServer returns the HTTP server that cmd/api runs. Extraction calls can
// take tens of seconds, so the write timeout is generous.
func NewServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	if addr == "" {
		addr = ":" + cfg.App.Port
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
