package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/belos/catalog/pkg/config"
	"github.com/belos/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPServer creates an http.Server from cfg. The handler is wrapped with otelhttp so
// every request gets a server span.
func NewHTTPServer(cfg config.HTTPConfig, serviceName string, handler http.Handler) *http.Server {
	instrumented := otelhttp.NewHandler(handler, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           instrumented,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter creates a chi router with request ids, access logging, panic recovery,
// permissive CORS and a request body limit.
func NewChiRouter(logger *slog.Logger, maxBodyBytes int64) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	mux.Use(web.BodyLimit(maxBodyBytes))
	mux.Get("/healthz", web.Healthz)
	return mux
}
