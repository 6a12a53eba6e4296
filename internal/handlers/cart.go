package handlers

import (
	"net/http"

	"github.com/diewo77/gleeful/httpx"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/session"
	"gorm.io/gorm"
)

type CartHandler struct {
	db    *gorm.DB
	store session.Store
}

func NewCartHandler(db *gorm.DB, store session.Store) *CartHandler {
	return &CartHandler{db: db, store: store}
}

// cartJSON is the JSON form of a cart, shared with the API.
type cartJSON struct {
	Outcome  string           `json:"outcome,omitempty"`
	Services []models.Service `json:"services"`
	Count    int              `json:"count"`
	Total    string           `json:"total"`
	Warning  string           `json:"warning,omitempty"`
}

func toCartJSON(v cart.View) cartJSON {
	services := v.Services
	if services == nil {
		services = []models.Service{}
	}
	return cartJSON{Services: services, Count: v.Count(), Total: v.Total.StringFixed(2), Warning: v.Warning}
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := cart.Contents(r.Context(), visitorCart(h.db, h.store, r))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if view.Warning != "" {
		middleware.Flash(w, r, middleware.FlashWarning, "flash."+view.Warning)
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	render(w, r, "cart.html", map[string]any{"Cart": view})
}

// mutated answers a cart mutation: JSON with the new cart state for XHR,
// flash + redirect otherwise.
func (h *CartHandler) mutated(w http.ResponseWriter, r *http.Request, c cart.VisitorCart, res cart.Result, kind, code string, args ...any) {
	if httpx.WantsJSON(r) {
		view, err := cart.Contents(r.Context(), c)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		out := toCartJSON(view)
		out.Outcome = res.Outcome.String()
		httpx.JSON(w, http.StatusOK, out)
		return
	}
	middleware.Flash(w, r, kind, code, args...)
	http.Redirect(w, r, back(r, "/services"), http.StatusSeeOther)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/services")
		return
	}
	c := visitorCart(h.db, h.store, r)
	res, err := c.Add(r.Context(), id)
	if err != nil {
		fail(w, r, err, back(r, "/services"))
		return
	}
	if res.Outcome == cart.AlreadyInCart {
		h.mutated(w, r, c, res, middleware.FlashInfo, "flash.already_in_cart", res.Service.Title)
		return
	}
	h.mutated(w, r, c, res, middleware.FlashSuccess, "flash.added", res.Service.Title)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/cart")
		return
	}
	c := visitorCart(h.db, h.store, r)
	res, err := c.Remove(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/cart")
		return
	}
	if res.Outcome == cart.NotInCart {
		h.mutated(w, r, c, res, middleware.FlashInfo, "flash.not_in_cart")
		return
	}
	h.mutated(w, r, c, res, middleware.FlashSuccess, "flash.removed", res.Service.Title)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c := visitorCart(h.db, h.store, r)
	n, err := c.Clear(r.Context())
	if err != nil {
		fail(w, r, err, "/cart")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]int{"cleared": n})
		return
	}
	middleware.Flash(w, r, middleware.FlashInfo, "flash.cart_cleared", n)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
