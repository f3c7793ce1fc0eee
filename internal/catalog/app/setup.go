// Package app wires the catalog service together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/belos/catalog/internal/catalog/config"
	"github.com/belos/catalog/internal/catalog/service"
	"github.com/belos/catalog/internal/catalog/store"
	"github.com/belos/catalog/internal/catalog/transport/rest"
	"github.com/belos/catalog/pkg/messaging"
	"github.com/belos/catalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "catalog"

type Dependencies struct {
	Store          store.ProductStore
	CatalogService service.CatalogService
	Health         *health.Server
	Logger         *slog.Logger
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewProductStore returns the PostgreSQL store guarded by a circuit breaker.
func NewProductStore(dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) store.ProductStore {
	pgStore := store.NewPgStore(dbPool, cfg.Database.QueryTimeout)
	return store.NewBreakerStore(pgStore, cfg.CircuitBreaker, logger)
}

// SetupDependencies builds the service graph on top of productStore. A nil publisher disables events.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Dependencies{
		Store:          productStore,
		CatalogService: service.NewService(productStore, publisher, logger),
		Health:         health.NewServer(),
		Logger:         logger,
	}
}

// SetupHttpHandler builds the router with every catalog route.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger, cfg.HTTPServer.MaxBodyBytes)
	wireRoutes(mux, deps, cfg)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	rest.NewHandler(deps.CatalogService, deps.Logger).RegisterRoutes(mux)
	if cfg.Metrics.Enabled && deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, cfg.Metrics.Path, deps.MetricsHandler)
	}
}

// SetupHttpServer creates the catalog HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, ServiceName, SetupHttpHandler(deps, cfg))
}

// SetupGrpcServer creates the gRPC server exposing the standard health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	healthRegisterFunc := func(s *grpc.Server) {
		healthpb.RegisterHealthServer(s, deps.Health)
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, healthRegisterFunc)
}
