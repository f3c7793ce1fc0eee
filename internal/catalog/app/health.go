package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/belos/catalog/internal/catalog/store"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProbe pings the store periodically and mirrors the result into the gRPC health server.
type HealthProbe struct {
	store    store.ProductStore
	health   *health.Server
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	last     healthpb.HealthCheckResponse_ServingStatus
}

func NewHealthProbe(deps *Dependencies, interval, timeout time.Duration) *HealthProbe {
	return &HealthProbe{
		store:    deps.Store,
		health:   deps.Health,
		interval: interval,
		timeout:  timeout,
		logger:   deps.Logger.With("component", "health"),
		last:     healthpb.HealthCheckResponse_UNKNOWN,
	}
}

// Run checks the store immediately and then every interval until ctx is done.
// On exit all services are reported NOT_SERVING.
func (p *HealthProbe) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.check(ctx)
	for {
		select {
		case <-ctx.Done():
			p.health.Shutdown()
			return nil
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *HealthProbe) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := p.store.Ping(pingCtx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if ctx.Err() == nil {
			p.logger.WarnContext(ctx, "Store ping failed", "error", err)
		}
	}
	if status != p.last {
		p.logger.InfoContext(ctx, "Serving status changed", "status", status.String())
		p.last = status
	}
	p.health.SetServingStatus("", status)
	p.health.SetServingStatus(ServiceName, status)
}
