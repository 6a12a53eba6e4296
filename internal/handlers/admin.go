package handlers

import (
	"net/http"

	"github.com/diewo77/gleeful/httpx"
	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/services"
)

// AdminHandler serves /admin. Routes are wrapped in AuthGate.RequireAdmin;
// the service re-checks every mutation through its guard.
type AdminHandler struct {
	admin   *services.AdminService
	catalog *services.Catalog
}

func NewAdminHandler(admin *services.AdminService, catalog *services.Catalog) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.catalog.Stats(ctx)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	svcs, err := h.catalog.ServicesByNewest(ctx)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	news, err := h.catalog.News(ctx, 0)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	portfolio, err := h.catalog.Portfolio(ctx)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	orders, err := h.catalog.Orders(ctx)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"stats": stats})
		return
	}
	render(w, r, "admin/dashboard.html", map[string]any{
		"Stats":     stats,
		"Services":  svcs,
		"News":      news,
		"Portfolio": portfolio,
		"Orders":    orders,
	})
}

// done answers a successful mutation.
func done(w http.ResponseWriter, r *http.Request, status int, payload any, code string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	middleware.Flash(w, r, middleware.FlashSuccess, code)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func serviceInput(r *http.Request) services.ServiceInput {
	return services.ServiceInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
		ImageURL:    r.FormValue("image_url"),
	}
}

func newsInput(r *http.Request) services.NewsInput {
	return services.NewsInput{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		ImageURL: r.FormValue("image_url"),
	}
}

func portfolioInput(r *http.Request) services.PortfolioInput {
	return services.PortfolioInput{
		Title:     r.FormValue("title"),
		Category:  r.FormValue("category"),
		ImageURL:  r.FormValue("image_url"),
		EventType: r.FormValue("event_type"),
	}
}

func (h *AdminHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.admin.CreateService(r.Context(), currentUser(r.Context()), serviceInput(r))
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusCreated, svc, "flash.saved")
}

func (h *AdminHandler) EditService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	svc, err := h.catalog.Service(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	render(w, r, "admin/edit.html", map[string]any{"Kind": "service", "Service": svc})
}

func (h *AdminHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	svc, err := h.admin.UpdateService(r.Context(), currentUser(r.Context()), id, serviceInput(r))
	if err != nil {
		fail(w, r, err, back(r, "/admin"))
		return
	}
	done(w, r, http.StatusOK, svc, "flash.saved")
}

func (h *AdminHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	if err := h.admin.DeleteService(r.Context(), currentUser(r.Context()), id); err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusOK, map[string]uint{"deleted": id}, "flash.deleted")
}

func (h *AdminHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	n, err := h.admin.CreateNews(r.Context(), currentUser(r.Context()), newsInput(r))
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusCreated, n, "flash.saved")
}

func (h *AdminHandler) EditNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	n, err := h.catalog.NewsItem(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	render(w, r, "admin/edit.html", map[string]any{"Kind": "news", "News": n})
}

func (h *AdminHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	n, err := h.admin.UpdateNews(r.Context(), currentUser(r.Context()), id, newsInput(r))
	if err != nil {
		fail(w, r, err, back(r, "/admin"))
		return
	}
	done(w, r, http.StatusOK, n, "flash.saved")
}

func (h *AdminHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	if err := h.admin.DeleteNews(r.Context(), currentUser(r.Context()), id); err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusOK, map[string]uint{"deleted": id}, "flash.deleted")
}

func (h *AdminHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.admin.CreatePortfolio(r.Context(), currentUser(r.Context()), portfolioInput(r))
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusCreated, p, "flash.saved")
}

func (h *AdminHandler) EditPortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	p, err := h.catalog.PortfolioItem(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	render(w, r, "admin/edit.html", map[string]any{"Kind": "portfolio", "Portfolio": p})
}

func (h *AdminHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	p, err := h.admin.UpdatePortfolio(r.Context(), currentUser(r.Context()), id, portfolioInput(r))
	if err != nil {
		fail(w, r, err, back(r, "/admin"))
		return
	}
	done(w, r, http.StatusOK, p, "flash.saved")
}

func (h *AdminHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	if err := h.admin.DeletePortfolio(r.Context(), currentUser(r.Context()), id); err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusOK, map[string]uint{"deleted": id}, "flash.deleted")
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	o, err := h.admin.UpdateOrderStatus(r.Context(), currentUser(r.Context()), id, r.FormValue("status"))
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusOK, map[string]any{"id": o.ID, "status": o.Status}, "flash.saved")
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/admin")
		return
	}
	if err := h.admin.DeleteOrder(r.Context(), currentUser(r.Context()), id); err != nil {
		fail(w, r, err, "/admin")
		return
	}
	done(w, r, http.StatusOK, map[string]uint{"deleted": id}, "flash.deleted")
}
