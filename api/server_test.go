package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
)

func TestNewServerFallsBackToConfiguredPort(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Port: "8081"}}
	srv := NewServer(cfg, "", http.NotFoundHandler())

	require.Equal(t, ":8081", srv.Addr)
	require.Equal(t, writeTimeout, srv.WriteTimeout)
	require.NotNil(t, srv.Handler)
}

func TestNewServerUsesExplicitAddr(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Port: "8081"}}
	srv := NewServer(cfg, ":9000", http.NotFoundHandler())

	require.Equal(t, ":9000", srv.Addr)
}
