package events

import (
	"encoding/json"
	"time"

	"github.com/belos/catalog/pkg/messaging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/propagation"
)

// ProductCreatedEvent is published after a product has been stored. Carrier holds the
// trace context of the creating request. Price is encoded as a decimal string.
type ProductCreatedEvent struct {
	Carrier   propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID int64                  `json:"product_id"`
	Name      string                 `json:"name"`
	Price     decimal.Decimal        `json:"price"`
	Quantity  int32                  `json:"quantity"`
	CreatedAt time.Time              `json:"created_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
