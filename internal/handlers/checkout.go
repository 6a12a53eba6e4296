package handlers

import (
	"net/http"

	"github.com/diewo77/gleeful/httpx"
	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/services"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CheckoutHandler struct {
	db       *gorm.DB
	store    session.Store
	checkout *services.CheckoutService
}

func NewCheckoutHandler(db *gorm.DB, store session.Store, checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{db: db, store: store, checkout: checkout}
}

func (h *CheckoutHandler) Form(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r.Context())
	if _, err := cart.Merge(r.Context(), h.db, h.store, session.VisitorIDFromContext(r.Context()), uid); err != nil {
		fail(w, r, err, "/cart")
		return
	}
	view, err := cart.Contents(r.Context(), cart.NewPersistedCart(h.db, uid))
	if err != nil {
		fail(w, r, err, "/cart")
		return
	}
	if view.Empty() {
		fail(w, r, apperr.ErrEmptyCart, "/cart")
		return
	}
	render(w, r, "checkout.html", map[string]any{"Cart": view, "Today": h.checkout.Now().Format("2006-01-02")})
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	in := services.CheckoutInput{Phone: r.FormValue("phone"), EventDate: r.FormValue("event_date")}
	uid := currentUser(r.Context())
	receipt, err := h.checkout.Checkout(r.Context(), session.VisitorIDFromContext(r.Context()), uid, in)
	if err != nil {
		verr, ok := isValidation(err)
		switch {
		case ok && httpx.WantsJSON(r):
			httpx.Error(w, err)
		case ok:
			view, _ := cart.Contents(r.Context(), cart.NewPersistedCart(h.db, uid))
			renderStatus(w, r, http.StatusUnprocessableEntity, "checkout.html", map[string]any{
				"Cart":   view,
				"Form":   in,
				"Errors": verr.Violations,
				"Today":  h.checkout.Now().Format("2006-01-02"),
			})
		case errors.Is(err, apperr.ErrEmptyCart):
			fail(w, r, err, "/cart")
		default:
			fail(w, r, err, "/checkout")
		}
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"order_id": receipt.OrderID, "total": receipt.Total.StringFixed(2)})
		return
	}
	middleware.Flash(w, r, middleware.FlashSuccess, "flash.order_placed", receipt.OrderID, models.FormatMoney(receipt.Total))
	http.Redirect(w, r, "/orders", http.StatusSeeOther)
}
