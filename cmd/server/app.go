package main

import (
	"net/http"
	"strings"

	"github.com/diewo77/gleeful/auth"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/config"
	"github.com/diewo77/gleeful/internal/handlers"
	"github.com/diewo77/gleeful/internal/logging"
	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/policy"
	"github.com/diewo77/gleeful/internal/services"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/diewo77/gleeful/view"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	db      *gorm.DB
	store   session.Store
	gate    *policy.AuthGate
	limiter *middleware.RateLimiter

	accounts *services.AccountService
	catalog  *services.Catalog
	checkout *services.CheckoutService
	admin    *services.AdminService
	receipts *services.ReceiptRenderer
}

// NewApp wires services, handlers and middleware over db and store.
func NewApp(db *gorm.DB, store session.Store, cfg *config.Config) *App {
	ag := policy.NewAuthGate(db, cfg.Session.CacheTTL)
	a := &App{
		mux:      http.NewServeMux(),
		db:       db,
		store:    store,
		gate:     ag,
		limiter:  middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		accounts: services.NewAccountService(db),
		catalog:  services.NewCatalog(db),
		checkout: services.NewCheckoutService(db, store),
		admin:    services.NewAdminService(db, ag.AdminGuard()),
		receipts: services.NewReceiptRenderer(cfg.Session.Secret),
	}

	auth.SetSecret(cfg.Session.Secret)
	auth.SetUserVerifier(a.accounts.Exists)

	view.SetDevMode(cfg.App.Dev)
	view.SetLangResolver(middleware.LangFrom)
	view.SetIsAdminResolver(func(r *http.Request) bool {
		uid, ok := auth.UserIDFromContext(r.Context())
		return ok && ag.IsAdmin(r.Context(), uid)
	})
	view.SetCartCountResolver(func(r *http.Request) int {
		uid, _ := auth.UserIDFromContext(r.Context())
		c := cart.For(db, store, uid, session.VisitorIDFromContext(r.Context()))
		v, err := cart.Contents(r.Context(), c)
		if err != nil {
			log.WithError(err).Warn("cart count failed")
			return 0
		}
		return v.Count()
	})

	a.setupRoutes(cfg.Server.CORSOrigins)

	// Recover → log → visitor id → user → language → routes
	var h http.Handler = a.mux
	h = middleware.Prefs(h)
	h = auth.Middleware(h)
	h = session.Middleware(cfg.Session.TTL)(h)
	h = logging.Middleware(h)
	a.handler = logging.Recover(h)
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(corsOrigins []string) {
	pages := handlers.NewPagesHandler(a.catalog)
	ah := handlers.NewAuthHandler(a.db, a.store, a.accounts)
	ch := handlers.NewCartHandler(a.db, a.store)
	coh := handlers.NewCheckoutHandler(a.db, a.store, a.checkout)
	ph := handlers.NewProfileHandler(a.accounts, a.catalog, a.gate, a.receipts)
	adm := handlers.NewAdminHandler(a.admin, a.catalog)
	api := handlers.NewAPIHandler(a.db, a.store, a.catalog)

	limited := func(f http.HandlerFunc) http.Handler { return a.limiter.Limit(f) }
	authed := func(f http.HandlerFunc) http.Handler { return auth.RequireAuth(f) }
	requireAdmin := a.gate.RequireAdmin()
	admin := func(f http.HandlerFunc) http.Handler { return requireAdmin(f) }

	// Public pages
	a.mux.HandleFunc("GET /", pages.Index)
	a.mux.HandleFunc("GET /services", pages.Services)
	a.mux.HandleFunc("GET /services/{id}", pages.ServiceDetail)
	a.mux.HandleFunc("GET /portfolio", pages.Portfolio)
	a.mux.HandleFunc("GET /news", pages.News)
	a.mux.HandleFunc("GET /news/{id}", pages.NewsDetail)
	a.mux.HandleFunc("GET /about", pages.About)
	a.mux.HandleFunc("GET /contacts", pages.Contacts)
	a.mux.Handle("POST /contacts", limited(pages.ContactSubmit))

	// Accounts
	a.mux.HandleFunc("GET /login", ah.LoginForm)
	a.mux.Handle("POST /login", limited(ah.Login))
	a.mux.HandleFunc("GET /register", ah.RegisterForm)
	a.mux.Handle("POST /register", limited(ah.Register))
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// Cart works for anonymous visitors and users alike
	a.mux.HandleFunc("GET /cart", ch.View)
	a.mux.HandleFunc("POST /cart/add/{id}", ch.Add)
	a.mux.HandleFunc("POST /cart/remove/{id}", ch.Remove)
	a.mux.HandleFunc("POST /cart/clear", ch.Clear)

	// Checkout and account pages
	a.mux.Handle("GET /checkout", authed(coh.Form))
	a.mux.Handle("POST /checkout", auth.RequireAuth(limited(coh.Submit)))
	a.mux.Handle("GET /profile", authed(ph.Profile))
	a.mux.Handle("GET /orders", authed(ph.Orders))
	a.mux.Handle("GET /orders/{id}/receipt.pdf", authed(ph.Receipt))

	// Admin
	a.mux.Handle("GET /admin", admin(adm.Dashboard))
	a.mux.Handle("POST /admin/services", admin(adm.CreateService))
	a.mux.Handle("GET /admin/services/{id}/edit", admin(adm.EditService))
	a.mux.Handle("POST /admin/services/{id}", admin(adm.UpdateService))
	a.mux.Handle("POST /admin/services/{id}/delete", admin(adm.DeleteService))
	a.mux.Handle("POST /admin/news", admin(adm.CreateNews))
	a.mux.Handle("GET /admin/news/{id}/edit", admin(adm.EditNews))
	a.mux.Handle("POST /admin/news/{id}", admin(adm.UpdateNews))
	a.mux.Handle("POST /admin/news/{id}/delete", admin(adm.DeleteNews))
	a.mux.Handle("POST /admin/portfolio", admin(adm.CreatePortfolio))
	a.mux.Handle("GET /admin/portfolio/{id}/edit", admin(adm.EditPortfolio))
	a.mux.Handle("POST /admin/portfolio/{id}", admin(adm.UpdatePortfolio))
	a.mux.Handle("POST /admin/portfolio/{id}/delete", admin(adm.DeletePortfolio))
	a.mux.Handle("POST /admin/orders/{id}/status", admin(adm.UpdateOrderStatus))
	a.mux.Handle("POST /admin/orders/{id}/delete", admin(adm.DeleteOrder))

	// JSON API
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/services", api.Services)
	apiMux.HandleFunc("GET /api/cart", api.Cart)
	withCORS := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: !allowsAny(corsOrigins),
	}).Handler(apiMux)
	// Method-qualified so the patterns do not collide with "GET /".
	a.mux.Handle("GET /api/", withCORS)
	a.mux.Handle("OPTIONS /api/", withCORS)

	// Static files
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
