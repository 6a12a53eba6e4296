package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/services"
	"github.com/diewo77/gleeful/validation"
	log "github.com/sirupsen/logrus"
)

// PagesHandler serves the public site.
type PagesHandler struct {
	catalog *services.Catalog
}

func NewPagesHandler(catalog *services.Catalog) *PagesHandler {
	return &PagesHandler{catalog: catalog}
}

func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderStatus(w, r, http.StatusNotFound, "error.html", map[string]any{"Message": "error.not_found"})
		return
	}
	featured, err := h.catalog.FeaturedServices(r.Context(), 3)
	if err != nil {
		fail(w, r, err, "/services")
		return
	}
	news, err := h.catalog.News(r.Context(), 3)
	if err != nil {
		fail(w, r, err, "/services")
		return
	}
	render(w, r, "index.html", map[string]any{"Services": featured, "News": news})
}

func (h *PagesHandler) Services(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("category")
	list, category, _, err := h.catalog.Services(r.Context(), filter)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "services.html", map[string]any{"Services": list, "Category": category})
}

func (h *PagesHandler) ServiceDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/services")
		return
	}
	svc, err := h.catalog.Service(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/services")
		return
	}
	render(w, r, "service_detail.html", map[string]any{"Service": svc})
}

func (h *PagesHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Portfolio(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "portfolio.html", map[string]any{"Items": items})
}

func (h *PagesHandler) News(w http.ResponseWriter, r *http.Request) {
	news, err := h.catalog.News(r.Context(), 0)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "news.html", map[string]any{"News": news})
}

func (h *PagesHandler) NewsDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, "/news")
		return
	}
	item, err := h.catalog.NewsItem(r.Context(), id)
	if err != nil {
		fail(w, r, err, "/news")
		return
	}
	render(w, r, "news_detail.html", map[string]any{"Item": item})
}

func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	render(w, r, "about.html", nil)
}

func (h *PagesHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	render(w, r, "contacts.html", nil)
}

// ContactSubmit validates the contact form. Messages are only logged.
func (h *PagesHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"name":    strings.TrimSpace(r.FormValue("name")),
		"email":   strings.TrimSpace(r.FormValue("email")),
		"message": strings.TrimSpace(r.FormValue("message")),
	}
	v := validation.Violations{}
	validation.Required("name", form["name"], v)
	if validation.Required("email", form["email"], v) {
		validation.Email("email", form["email"], v)
	}
	validation.Required("message", form["message"], v)
	if !v.Empty() {
		renderStatus(w, r, http.StatusUnprocessableEntity, "contacts.html", map[string]any{"Form": form, "Errors": v})
		return
	}
	log.WithFields(log.Fields{"name": form["name"], "email": form["email"]}).Info("contact form submitted")
	middleware.Flash(w, r, middleware.FlashSuccess, "flash.contact_sent")
	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}
