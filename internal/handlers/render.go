package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/diewo77/gleeful/auth"
	"github.com/diewo77/gleeful/httpx"
	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/middleware"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/diewo77/gleeful/view"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// render shows a page with the pending flash message attached.
func render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	renderStatus(w, r, http.StatusOK, name, data)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if flash, ok := middleware.PopFlash(w, r); ok {
		data["Flash"] = flash
	}
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		log.WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// fail answers an application error: JSON for API/XHR clients, an error
// page or a flash + redirect for browsers.
func fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if httpx.WantsJSON(r) {
		httpx.Error(w, err)
		return
	}
	status := httpx.Status(err)
	switch {
	case status == http.StatusNotFound:
		renderStatus(w, r, status, "error.html", map[string]any{"Message": "error.not_found"})
	case status >= http.StatusInternalServerError:
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		middleware.Flash(w, r, middleware.FlashError, "flash.storage_error")
		http.Redirect(w, r, back, http.StatusSeeOther)
	default:
		middleware.Flash(w, r, middleware.FlashError, flashCode(err))
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}

func flashCode(err error) string {
	if _, ok := isValidation(err); ok {
		return "flash.invalid_form"
	}
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		return "flash.forbidden"
	case errors.Is(err, apperr.ErrEmptyCart):
		return "flash.empty_cart"
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "flash.invalid_credentials"
	case errors.Is(err, apperr.ErrConflict):
		return "flash." + apperr.Reason(err)
	}
	return "flash.storage_error"
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("id")
	}
	return uint(id), nil
}

func currentUser(ctx context.Context) uint {
	uid, _ := auth.UserIDFromContext(ctx)
	return uid
}

func visitorCart(db *gorm.DB, store session.Store, r *http.Request) cart.VisitorCart {
	return cart.For(db, store, currentUser(r.Context()), session.VisitorIDFromContext(r.Context()))
}

// back returns the referring page, or fallback.
func back(r *http.Request, fallback string) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return fallback
}

func isValidation(err error) (*apperr.ValidationError, bool) {
	var verr *apperr.ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
