// Package service provides the catalog business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/model"
	"github.com/belos/catalog/internal/catalog/store"
	"github.com/belos/catalog/pkg/messaging"
	"github.com/belos/catalog/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// CatalogService lists and creates products.
type CatalogService interface {
	// ListProducts returns every stored product in insertion order.
	// Returns an empty slice if no products exist.
	ListProducts(ctx context.Context) ([]ProductDto, error)

	// CreateProduct validates the candidate and stores it.
	// Returns a *ValidationError naming each offending field; the store is not touched in that case.
	CreateProduct(ctx context.Context, candidate ProductCreateDto) (*ProductDto, error)
}

// Service implements CatalogService on top of a ProductStore.
type Service struct {
	store           store.ProductStore
	publisher       messaging.Publisher
	validate        *validator.Validate
	logger          *slog.Logger
	productsCounter metric.Int64Counter
}

// NewService creates a new instance of CatalogService.
func NewService(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("catalog-service")
	productsCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		store:           productStore,
		publisher:       publisher,
		validate:        newValidator(),
		logger:          logger.With("component", "service"),
		productsCounter: productsCounter,
	}
}

// ProductCreateDto is a candidate product as received from a client.
// Pointer fields distinguish a missing field from a zero value. Any id sent by the client is ignored.
type ProductCreateDto struct {
	Name        *string  `json:"name"        validate:"required,min=1,max=255"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required,min=0"`
	Quantity    *int32   `json:"quantity"    validate:"required,min=0"`
}

// ProductDto is a stored product as returned to clients.
type ProductDto struct {
	ID          *int64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int32   `json:"quantity"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ListProducts retrieves all products as DTOs.
func (s *Service) ListProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos, nil
}

// CreateProduct validates candidate, stores it and announces the new product.
// Publishing is best effort: a failure is logged and the created product is still returned.
func (s *Service) CreateProduct(ctx context.Context, candidate ProductCreateDto) (*ProductDto, error) {
	if err := s.validateCandidate(candidate); err != nil {
		return nil, err
	}

	product := model.NewProduct(
		*candidate.Name,
		*candidate.Description,
		decimal.NewFromFloat(*candidate.Price),
		*candidate.Quantity,
	)
	created, err := s.store.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishCreated(ctx, created)
	s.productsCounter.Add(ctx, 1)

	return toDto(created), nil
}

func (s *Service) validateCandidate(candidate ProductCreateDto) error {
	err := s.validate.Struct(candidate)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate product: %w", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return &cerrors.ValidationError{Fields: fields}
}

func (s *Service) publishCreated(ctx context.Context, p *model.Product) {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	event := events.ProductCreatedEvent{
		Carrier:   carrier,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ProductCreatedEvent", "product_id", p.ID, "error", err)
	}
}

func toDto(p *model.Product) *ProductDto {
	dto := &ProductDto{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Quantity:    p.Quantity,
	}
	if !p.IsNew() {
		id := p.ID
		dto.ID = &id
	}
	return dto
}
