package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/model"
	"github.com/belos/catalog/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore returns err from every method and counts calls.
type failingStore struct {
	ProductStore
	err   error
	calls int
}

func (f *failingStore) FindAll(context.Context) ([]model.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Product{}, nil
}

func (f *failingStore) FindByID(context.Context, int64) (*model.Product, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Ping(context.Context) error {
	return f.err
}

func newTestBreaker(next ProductStore) *Breaker {
	cfg := config.CircuitBreakerConfig{
		ConsecutiveFailures: 3,
		MaxRequests:         1,
		OpenTimeout:         time.Hour,
	}
	return NewBreakerStore(next, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_Breaker_OpensOnStorageFailures(t *testing.T) {
	// given
	ctx := context.Background()
	inner := &failingStore{err: fmt.Errorf("%w: connection refused", cerrors.ErrStorageUnavailable)}
	b := newTestBreaker(inner)

	// when
	for range 3 {
		_, err := b.FindAll(ctx)
		require.ErrorIs(t, err, cerrors.ErrStorageUnavailable)
	}
	_, err := b.FindAll(ctx)

	// then
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.ErrorIs(t, err, cerrors.ErrStorageUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls, "open breaker does not reach the store")
}

func Test_Breaker_IgnoresDomainErrors(t *testing.T) {
	ctx := context.Background()
	inner := &failingStore{err: cerrors.ErrProductNotFound}
	b := newTestBreaker(inner)

	for range 10 {
		_, err := b.FindByID(ctx, 1)
		require.ErrorIs(t, err, cerrors.ErrProductNotFound)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 10, inner.calls)
}

func Test_Breaker_PassesResultsThrough(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemoryStore()
	b := newTestBreaker(mem)

	created, err := b.Create(ctx, monitor())
	require.NoError(t, err)
	all, err := b.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Product{*created}, all)

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.NoError(t, b.DeleteByID(ctx, created.ID))
	require.NoError(t, b.DeleteAll(ctx))
}

func Test_Breaker_PingBypassesBreaker(t *testing.T) {
	ctx := context.Background()
	inner := &failingStore{err: fmt.Errorf("%w: down", cerrors.ErrStorageUnavailable)}
	b := newTestBreaker(inner)
	for range 3 {
		_, _ = b.FindAll(ctx)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	inner.err = nil
	assert.NoError(t, b.Ping(ctx))
}

func Test_isSuccessful(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", want: true},
		{name: "not found", err: cerrors.ErrProductNotFound, want: true},
		{name: "validation", err: &cerrors.ValidationError{}, want: true},
		{name: "canceled", err: fmt.Errorf("%w: %w", cerrors.ErrStorageUnavailable, context.Canceled), want: true},
		{name: "storage", err: fmt.Errorf("%w: boom", cerrors.ErrStorageUnavailable), want: false},
		{name: "unknown", err: errors.New("boom"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSuccessful(tt.err))
		})
	}
}
