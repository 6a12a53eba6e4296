package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/diewo77/gleeful/gate"
	"github.com/diewo77/gleeful/internal/policy"
	"github.com/diewo77/gleeful/internal/services"
)

type ProfileHandler struct {
	accounts *services.AccountService
	catalog  *services.Catalog
	gate     *policy.AuthGate
	receipts *services.ReceiptRenderer
}

func NewProfileHandler(accounts *services.AccountService, catalog *services.Catalog, ag *policy.AuthGate, receipts *services.ReceiptRenderer) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, catalog: catalog, gate: ag, receipts: receipts}
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r.Context())
	user, err := h.accounts.User(r.Context(), uid)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	recent, err := h.catalog.UserOrders(r.Context(), uid, 5)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	total, err := h.catalog.CountUserOrders(r.Context(), uid)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "profile.html", map[string]any{"User": user, "Orders": recent, "OrdersCount": total})
}

func (h *ProfileHandler) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.catalog.UserOrders(r.Context(), currentUser(r.Context()), 0)
	if err != nil {
		fail(w, r, err, "/profile")
		return
	}
	render(w, r, "orders.html", map[string]any{"Orders": orders})
}

// Receipt streams the PDF receipt of an order to its owner or an admin.
func (h *ProfileHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	order, err := h.catalog.Order(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/orders")
		return
	}
	if err := h.gate.Authorize(r.Context(), currentUser(r.Context()), gate.ActionView, policy.ResourceOrder, &order); err != nil {
		fail(w, r, err, "/orders")
		return
	}
	var buf bytes.Buffer
	if err := h.receipts.Render(&buf, order); err != nil {
		fail(w, r, err, "/orders")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=gleeful-order-%d.pdf", order.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
