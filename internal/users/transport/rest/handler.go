// Package rest exposes the user directory over HTTP.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/belos/catalog/internal/users/service"
	"github.com/belos/catalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	directory service.UserDirectory
	logger    *slog.Logger
}

func NewHandler(directory service.UserDirectory, logger *slog.Logger) *Handler {
	return &Handler{
		directory: directory,
		logger:    logger.With("component", "rest"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/usuarios/{id}", h.FindByID)
}

// FindByID answers with the user for the path id. A non-integer id is rejected with 400.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseInt64Param(w, r, h.logger, "id")
	if !ok {
		h.logger.WarnContext(r.Context(), "Invalid user id", "id", chi.URLParam(r, "id"))
		return
	}
	user := h.directory.FindByID(id)
	h.logger.DebugContext(r.Context(), "Resolved user", "id", id, "name", user.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, user)
}
