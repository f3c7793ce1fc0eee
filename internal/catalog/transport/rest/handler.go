// Package rest provides HTTP handlers for the catalog.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	cerrors "github.com/belos/catalog/internal/catalog/errors"
	"github.com/belos/catalog/internal/catalog/service"
	"github.com/belos/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

// WelcomeMessage is served at the root path.
type WelcomeMessage struct {
	Message string `json:"message"`
	Age     int    `json:"age"`
}

type Handler struct {
	service service.CatalogService
	logger  *slog.Logger
}

// NewHandler creates a new Handler backed by the given service.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the catalog HTTP routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Welcome)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
	})
}

// Welcome answers with a fixed greeting.
func (h *Handler) Welcome(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, WelcomeMessage{
		Message: "Welcome to this application",
		Age:     21,
	})
}

// ListProducts returns all products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to list products")

	list, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// CreateProduct stores a new product and echoes it back with its identity.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var candidate service.ProductCreateDto
	if err := web.DecodeJSON(r, &candidate); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product")

	created, err := h.service.CreateProduct(r.Context(), candidate)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, created)
}

// respondServiceError maps service errors to HTTP responses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErr *cerrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": validationErr.Fields})
	case errors.Is(err, cerrors.ErrStorageUnavailable):
		h.logger.ErrorContext(r.Context(), "Storage unavailable", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Storage is temporarily unavailable")
	default:
		h.logger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
	}
}
