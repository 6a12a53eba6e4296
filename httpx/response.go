package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// IsXHR reports whether the request was sent by fetch/XMLHttpRequest.
func IsXHR(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// WantsJSON reports whether the client prefers a JSON answer over HTML.
func WantsJSON(r *http.Request) bool {
	if IsXHR(r) || strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Status maps an application error to an HTTP status code.
func Status(err error) int {
	var verr *apperr.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as JSON using Status. Storage failures are logged and
// reported without their cause.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		JSONError(w, status, "validation_failed", verr.Violations)
	case status == http.StatusInternalServerError:
		log.WithError(err).Error("request failed")
		JSONError(w, status, apperr.ErrStorage.Error(), nil)
	default:
		JSONError(w, status, apperr.Reason(err), nil)
	}
}
