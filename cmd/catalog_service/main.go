// Package main runs the catalog service: REST API, gRPC health, pprof and the store health probe.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/belos/catalog/internal/catalog/app"
	"github.com/belos/catalog/internal/catalog/config"
	"github.com/belos/catalog/internal/catalog/store"
	"github.com/belos/catalog/pkg/bootstrap"
	"github.com/belos/catalog/pkg/config/configloader"
	"github.com/belos/catalog/pkg/messaging"
	pnats "github.com/belos/catalog/pkg/nats"
	"github.com/belos/catalog/pkg/telemetry"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](app.ServiceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(app.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, mp.Shutdown)
		metricsHandler = handler
	}

	if cfg.Database.Migrate {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database schema is up to date")
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	publisher, closePublisher, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(app.NewProductStore(dbPool, cfg, logger), publisher, logger)
	deps.MetricsHandler = metricsHandler
	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	probe := app.NewHealthProbe(deps, cfg.Health.Interval, cfg.Health.Timeout)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return probe.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		return stopGrpc(grpcServer, cfg.Shutdown.Timeout, logger)
	})

	if cfg.PProf.Enabled {
		pprofServer := &http.Server{
			Addr:              cfg.PProf.Addr,
			ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupPublisher connects to NATS when enabled and makes sure the products stream exists.
func setupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS disabled, product events are not published")
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if _, err := pnats.EnsureStream(streamCtx, js, cfg.NATS.Stream, messaging.ProductsCreatedSubject); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("url", cfg.NATS.Url), slog.String("stream", cfg.NATS.Stream))
	return pnats.NewNatsPublisher(js), func() { _ = nc.Drain() }, nil
}

func stopGrpc(grpcServer *grpc.Server, timeout time.Duration, logger *slog.Logger) error {
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		logger.Info("gRPC server stopped gracefully.")
		return nil
	case <-time.After(timeout):
		logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
		grpcServer.Stop()
		return fmt.Errorf("grpc server graceful stop timed out")
	}
}

func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("Failed to shut down "+name, "error", err)
	}
}
