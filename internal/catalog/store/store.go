// Package store provides storage for catalog products.
package store

import (
	"context"

	"github.com/belos/catalog/internal/catalog/model"
)

// ProductStore abstracts the product storage medium.
// Implementations must be safe for concurrent use and wrap I/O failures in ErrStorageUnavailable.
type ProductStore interface {
	// Create persists p under a newly assigned identity and returns the stored product.
	// Any ID already set on p is ignored.
	Create(ctx context.Context, p model.Product) (*model.Product, error)

	// FindAll returns every product in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]model.Product, error)

	// FindByID retrieves a single product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// Update overwrites the business fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, p model.Product) (*model.Product, error)

	// DeleteByID removes a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteAll removes every product. Identities are not reused afterwards.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored products.
	Count(ctx context.Context) (int64, error)

	// Ping checks that the medium is reachable.
	Ping(ctx context.Context) error
}
