// Package app wires the user lookup service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/belos/catalog/internal/users/config"
	"github.com/belos/catalog/internal/users/service"
	"github.com/belos/catalog/internal/users/transport/rest"
	"github.com/belos/catalog/pkg/server"
)

const ServiceName = "user"

// SetupHttpHandler builds the router serving the user directory.
func SetupHttpHandler(logger *slog.Logger, maxBodyBytes int64) http.Handler {
	mux := server.NewChiRouter(logger, maxBodyBytes)
	rest.NewHandler(service.NewDirectory(), logger).RegisterRoutes(mux)
	return mux
}

func SetupHttpServer(logger *slog.Logger, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, ServiceName, SetupHttpHandler(logger, cfg.HTTPServer.MaxBodyBytes))
}
