package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/diewo77/gleeful/auth"
	"github.com/diewo77/gleeful/httpx"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/services"
	"github.com/diewo77/gleeful/internal/session"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db       *gorm.DB
	store    session.Store
	accounts *services.AccountService
}

func NewAuthHandler(db *gorm.DB, store session.Store, accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{db: db, store: store, accounts: accounts}
}

// safeNext keeps redirects on this site.
func safeNext(raw, fallback string) string {
	u, err := url.Parse(raw)
	if raw == "" || err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	return raw
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != 0 {
		middleware.Flash(w, r, middleware.FlashInfo, "flash.already_logged_in")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, "login.html", map[string]any{"Next": r.URL.Query().Get("next")})
}

// Login authenticates, then moves the anonymous cart into the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	next := r.FormValue("next")
	user, err := h.accounts.Authenticate(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if flashCode(err) != "flash.invalid_credentials" {
			log.WithError(err).Error("login failed")
		}
		renderStatus(w, r, http.StatusUnauthorized, "login.html", map[string]any{
			"Email": email,
			"Next":  next,
			"Error": flashCode(err),
		})
		return
	}

	auth.CreateSession(w, user.ID)
	merged, err := cart.Merge(r.Context(), h.db, h.store, session.VisitorIDFromContext(r.Context()), user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("cart merge at login failed")
	}
	if merged > 0 {
		middleware.Flash(w, r, middleware.FlashSuccess, "flash.welcome_merged", user.Username, merged)
	} else {
		middleware.Flash(w, r, middleware.FlashSuccess, "flash.welcome", user.Username)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "merged": merged}).Info("user logged in")

	fallback := "/"
	if user.IsAdmin {
		fallback = "/admin"
	}
	http.Redirect(w, r, safeNext(next, fallback), http.StatusSeeOther)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != 0 {
		middleware.Flash(w, r, middleware.FlashInfo, "flash.already_logged_in")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, "register.html", nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := services.RegisterInput{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}
	res, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		data := map[string]any{"Username": in.Username, "Email": in.Email}
		if verr, ok := isValidation(err); ok {
			data["Errors"] = verr.Violations
		} else {
			data["Error"] = flashCode(err)
		}
		renderStatus(w, r, httpx.Status(err), "register.html", data)
		return
	}

	auth.CreateSession(w, res.User.ID)
	if _, err := cart.Merge(r.Context(), h.db, h.store, session.VisitorIDFromContext(r.Context()), res.User.ID); err != nil {
		log.WithError(err).WithField("user_id", res.User.ID).Warn("cart merge at registration failed")
	}
	if res.PasswordReset {
		middleware.Flash(w, r, middleware.FlashSuccess, "flash.password_reset", res.User.Username)
	} else {
		middleware.Flash(w, r, middleware.FlashSuccess, "flash.registered", res.User.Username)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	middleware.Flash(w, r, middleware.FlashInfo, "flash.logout")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
