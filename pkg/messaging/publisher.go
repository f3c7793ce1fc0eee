package messaging

import (
	"context"
)

const (
	ProductsStream         = "PRODUCTS"
	ProductsCreatedSubject = "products.created"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
