// Package httperr maps domain error kinds to transport status codes:
// not-found to 404, validation and business-rule failures to 400,
// authorization failures to 403, everything else to an opaque 500.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgbank/dgbank/internal/domain"
	"github.com/dgbank/dgbank/pkg/logger"
)

func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrBusinessRule):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		logger.Log.Error("internal error", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("error encoding response", logger.Error(err))
	}
}
