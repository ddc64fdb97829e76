package handlers

import (
	"errors"
	"net/http"

	"github.com/pliu/courier/internal/chat"
)

// writeError maps the core error taxonomy onto HTTP status codes. Unknown
// errors are storage-level failures and surface as 500 without detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, chat.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, chat.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, chat.ErrBadRequest), errors.Is(err, chat.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
