package handlers

import (
	"net/http"

	"github.com/diewo77/gleeful/httpx"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/services"
	"github.com/diewo77/gleeful/internal/session"
	"gorm.io/gorm"
)

// APIHandler serves the read-only JSON endpoints under /api/.
type APIHandler struct {
	db      *gorm.DB
	store   session.Store
	catalog *services.Catalog
}

func NewAPIHandler(db *gorm.DB, store session.Store, catalog *services.Catalog) *APIHandler {
	return &APIHandler{db: db, store: store, catalog: catalog}
}

// Services lists the catalog, optionally filtered by ?category=.
func (h *APIHandler) Services(w http.ResponseWriter, r *http.Request) {
	list, _, ok, err := h.catalog.Services(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_category", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *APIHandler) Cart(w http.ResponseWriter, r *http.Request) {
	view, err := cart.Contents(r.Context(), visitorCart(h.db, h.store, r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCartJSON(view))
}
