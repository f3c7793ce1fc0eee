package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/model"
	"github.com/belos/catalog/internal/catalog/store"
	"github.com/belos/catalog/pkg/messaging"
	"github.com/belos/catalog/pkg/messaging/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockProductStore is a mock implementation of the ProductStore interface.
type mockProductStore struct {
	store.ProductStore
	products    []model.Product
	product     model.Product
	error       error
	createCalls int
	created     model.Product
}

func (m *mockProductStore) FindAll(_ context.Context) ([]model.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductStore) Create(_ context.Context, p model.Product) (*model.Product, error) {
	m.createCalls++
	m.created = p
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.error
}

func ptr[T any](v T) *T { return &v }

func validCandidate() ProductCreateDto {
	return ProductCreateDto{
		Name:        ptr("Monitor"),
		Description: ptr("27 inch"),
		Price:       ptr(149.99),
		Quantity:    ptr(int32(10)),
	}
}

func Test_ProductService_ListProducts(t *testing.T) {
	ErrStoreError := fmt.Errorf("%w: connection refused", cerrors.ErrStorageUnavailable)
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expected    []ProductDto
		expectError error
	}{
		{
			name: "Success - products found",
			mockStore: &mockProductStore{
				products: []model.Product{
					model.RestoreProduct(1, "Monitor", "27 inch", decimal.RequireFromString("149.99"), 10),
					model.RestoreProduct(2, "Mouse", "", decimal.RequireFromString("0"), 0),
				},
			},
			expected: []ProductDto{
				{ID: ptr(int64(1)), Name: "Monitor", Description: "27 inch", Price: 149.99, Quantity: 10},
				{ID: ptr(int64(2)), Name: "Mouse", Description: "", Price: 0, Quantity: 0},
			},
		},
		{
			name:      "Success - no products",
			mockStore: &mockProductStore{products: []model.Product{}},
			expected:  []ProductDto{},
		},
		{
			name:        "Error - storage unavailable",
			mockStore:   &mockProductStore{error: ErrStoreError},
			expectError: cerrors.ErrStorageUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore, &mockPublisher{}, discard)
			// when
			list, err := service.ListProducts(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, list)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Equal(t, tc.expected, list)
		})
	}
}

func Test_ProductService_CreateProduct(t *testing.T) {
	stored := model.RestoreProduct(7, "Monitor", "27 inch", decimal.RequireFromString("149.99"), 10)
	testCases := []struct {
		name            string
		candidate       ProductCreateDto
		mockStore       *mockProductStore
		expected        *ProductDto
		expectError     error
		expectFields    map[string]string
		expectStoreCall bool
	}{
		{
			name:            "Success - product created",
			candidate:       validCandidate(),
			mockStore:       &mockProductStore{product: stored},
			expected:        &ProductDto{ID: ptr(int64(7)), Name: "Monitor", Description: "27 inch", Price: 149.99, Quantity: 10},
			expectStoreCall: true,
		},
		{
			name: "Success - empty description and zero values",
			candidate: ProductCreateDto{
				Name: ptr("Sticker"), Description: ptr(""), Price: ptr(0.0), Quantity: ptr(int32(0)),
			},
			mockStore:       &mockProductStore{product: model.RestoreProduct(8, "Sticker", "", decimal.Zero, 0)},
			expected:        &ProductDto{ID: ptr(int64(8)), Name: "Sticker", Description: "", Price: 0, Quantity: 0},
			expectStoreCall: true,
		},
		{
			name: "Error - empty name",
			candidate: func() ProductCreateDto {
				c := validCandidate()
				c.Name = ptr("")
				return c
			}(),
			mockStore:    &mockProductStore{},
			expectError:  cerrors.ErrValidation,
			expectFields: map[string]string{"name": "failed on rule: min"},
		},
		{
			name:         "Error - negative price and quantity",
			candidate:    func() ProductCreateDto { c := validCandidate(); c.Price = ptr(-1.0); c.Quantity = ptr(int32(-1)); return c }(),
			mockStore:    &mockProductStore{},
			expectError:  cerrors.ErrValidation,
			expectFields: map[string]string{"price": "failed on rule: min", "quantity": "failed on rule: min"},
		},
		{
			name:        "Error - all fields missing",
			candidate:   ProductCreateDto{},
			mockStore:   &mockProductStore{},
			expectError: cerrors.ErrValidation,
			expectFields: map[string]string{
				"name":        "failed on rule: required",
				"description": "failed on rule: required",
				"price":       "failed on rule: required",
				"quantity":    "failed on rule: required",
			},
		},
		{
			name: "Error - name too long",
			candidate: func() ProductCreateDto {
				c := validCandidate()
				long := make([]rune, 256)
				for i := range long {
					long[i] = 'é'
				}
				c.Name = ptr(string(long))
				return c
			}(),
			mockStore:    &mockProductStore{},
			expectError:  cerrors.ErrValidation,
			expectFields: map[string]string{"name": "failed on rule: max"},
		},
		{
			name:            "Error - storage unavailable",
			candidate:       validCandidate(),
			mockStore:       &mockProductStore{error: fmt.Errorf("%w: timeout", cerrors.ErrStorageUnavailable)},
			expectError:     cerrors.ErrStorageUnavailable,
			expectStoreCall: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			service := NewService(tc.mockStore, publisher, discard)
			// when
			created, err := service.CreateProduct(context.Background(), tc.candidate)
			// then
			if tc.expectStoreCall {
				assert.Equal(t, 1, tc.mockStore.createCalls)
			} else {
				assert.Zero(t, tc.mockStore.createCalls, "store must not be called for an invalid candidate")
			}
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Empty(t, publisher.events)
				if tc.expectFields != nil {
					var vErr *cerrors.ValidationError
					require.True(t, errors.As(err, &vErr))
					assert.Equal(t, tc.expectFields, vErr.Fields)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, created)
			assert.True(t, tc.mockStore.created.IsNew(), "candidate reaches the store without an id")
			require.Len(t, publisher.events, 1)
			event, ok := publisher.events[0].(events.ProductCreatedEvent)
			require.True(t, ok)
			assert.Equal(t, *tc.expected.ID, event.ProductID)
		})
	}
}

func Test_ProductService_CreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: model.RestoreProduct(1, "Monitor", "", decimal.NewFromInt(1), 1)}
	publisher := &mockPublisher{error: errors.New("nats down")}
	service := NewService(mockStore, publisher, discard)

	// when
	created, err := service.CreateProduct(context.Background(), validCandidate())

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), *created.ID)
	assert.Len(t, publisher.events, 1)
}

func Test_ProductService_CreateProduct_ConvertsPriceExactly(t *testing.T) {
	mockStore := &mockProductStore{}
	service := NewService(mockStore, nil, discard)

	_, _ = service.CreateProduct(context.Background(), validCandidate())

	assert.Equal(t, "149.99", mockStore.created.Price.String())
	assert.Equal(t, "Monitor", mockStore.created.Name)
}
