package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/model"
	"github.com/belos/catalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// Breaker decorates a ProductStore with a circuit breaker. Only storage failures
// count against the breaker; while it is open calls fail fast with ErrStorageUnavailable.
type Breaker struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next with a circuit breaker tuned by cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) *Breaker {
	st := gobreaker.Settings{
		Name:        "product-store",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(cfg.ErrorRatePercent > 0 && total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

// isSuccessful reports whether err should count as healthy for the breaker. Caller
// cancellations and domain errors say nothing about the store's health.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return !errors.Is(err, cerrors.ErrStorageUnavailable)
}

// State exposes the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", cerrors.ErrStorageUnavailable, err)
		}
		return zero, err
	}
	return res.(T), nil
}

func (b *Breaker) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	return execute(b, func() (*model.Product, error) { return b.next.Create(ctx, p) })
}

func (b *Breaker) FindAll(ctx context.Context) ([]model.Product, error) {
	return execute(b, func() ([]model.Product, error) { return b.next.FindAll(ctx) })
}

func (b *Breaker) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	return execute(b, func() (*model.Product, error) { return b.next.FindByID(ctx, id) })
}

func (b *Breaker) Update(ctx context.Context, p model.Product) (*model.Product, error) {
	return execute(b, func() (*model.Product, error) { return b.next.Update(ctx, p) })
}

func (b *Breaker) DeleteByID(ctx context.Context, id int64) error {
	_, err := execute(b, func() (struct{}, error) { return struct{}{}, b.next.DeleteByID(ctx, id) })
	return err
}

func (b *Breaker) DeleteAll(ctx context.Context) error {
	_, err := execute(b, func() (struct{}, error) { return struct{}{}, b.next.DeleteAll(ctx) })
	return err
}

func (b *Breaker) Count(ctx context.Context) (int64, error) {
	return execute(b, func() (int64, error) { return b.next.Count(ctx) })
}

// Ping bypasses the breaker so the health probe sees the store's real state.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}
