// Package model holds the catalog entities.
package model

import "github.com/shopspring/decimal"

// Product is a catalog item. ID is assigned by the store and is zero until the
// product has been persisted.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
}

// NewProduct builds a product that has not been stored yet.
func NewProduct(name, description string, price decimal.Decimal, quantity int32) Product {
	return Product{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
	}
}

// RestoreProduct builds a product with a known identity, e.g. from a stored row.
func RestoreProduct(id int64, name, description string, price decimal.Decimal, quantity int32) Product {
	p := NewProduct(name, description, price, quantity)
	p.ID = id
	return p
}

// IsNew reports whether the product has no identity yet.
func (p Product) IsNew() bool {
	return p.ID == 0
}
