package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	productColumns = "id, name, description, price, quantity"

	createSQL     = "INSERT INTO products (name, description, price, quantity) VALUES ($1, $2, $3, $4) RETURNING " + productColumns
	findAllSQL    = "SELECT " + productColumns + " FROM products ORDER BY id"
	findByIDSQL   = "SELECT " + productColumns + " FROM products WHERE id = $1"
	updateSQL     = "UPDATE products SET name = $2, description = $3, price = $4, quantity = $5 WHERE id = $1 RETURNING " + productColumns
	deleteByIDSQL = "DELETE FROM products WHERE id = $1"
	deleteAllSQL  = "DELETE FROM products"
	countSQL      = "SELECT count(*) FROM products"

	checkViolation = "23514"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db           *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPgStore creates a ProductStore on top of pool. Every statement is bounded by queryTimeout.
func NewPgStore(pool *pgxpool.Pool, queryTimeout time.Duration) *PgStore {
	return &PgStore{
		db:           pool,
		queryTimeout: queryTimeout,
	}
}

func (p *PgStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.queryTimeout)
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		id          int64
		name        string
		description string
		price       decimal.Decimal
		quantity    int32
	)
	if err := row.Scan(&id, &name, &description, &price, &quantity); err != nil {
		return nil, err
	}
	product := model.RestoreProduct(id, name, description, price, quantity)
	return &product, nil
}

// storageError classifies err: constraint violations become validation errors,
// everything else is reported as an unavailable store.
func storageError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
		field := strings.TrimSuffix(strings.TrimPrefix(pgErr.ConstraintName, "products_"), "_check")
		return &cerrors.ValidationError{Fields: map[string]string{field: "failed on rule: check"}}
	}
	return fmt.Errorf("%w: failed to %s: %w", cerrors.ErrStorageUnavailable, op, err)
}

// Create inserts p and returns the row with its generated identity.
func (p *PgStore) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	created, err := scanProduct(p.db.QueryRow(ctx, createSQL,
		product.Name, product.Description, product.Price, product.Quantity))
	if err != nil {
		return nil, storageError("create product", err)
	}
	return created, nil
}

// FindAll retrieves all products ordered by identity.
func (p *PgStore) FindAll(ctx context.Context) ([]model.Product, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, findAllSQL)
	if err != nil {
		return nil, storageError("find all products", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, storageError("scan product", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("find all products", err)
	}
	return products, nil
}

// FindByID retrieves a product by its identity.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	product, err := scanProduct(p.db.QueryRow(ctx, findByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, storageError("find product by ID", err)
	}
	return product, nil
}

func (p *PgStore) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	updated, err := scanProduct(p.db.QueryRow(ctx, updateSQL,
		product.ID, product.Name, product.Description, product.Price, product.Quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, storageError("update product", err)
	}
	return updated, nil
}

func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	tag, err := p.db.Exec(ctx, deleteByIDSQL, id)
	if err != nil {
		return storageError("delete product by ID", err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) DeleteAll(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if _, err := p.db.Exec(ctx, deleteAllSQL); err != nil {
		return storageError("delete all products", err)
	}
	return nil
}

func (p *PgStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := p.db.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, storageError("count products", err)
	}
	return count, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if err := p.db.Ping(ctx); err != nil {
		return storageError("ping database", err)
	}
	return nil
}
