package handlers

import (
	"net/http"

	"github.com/eldtechnologies/lostfound/internal/api/middleware"
)

// Profile returns the identity asserted by the caller's token.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.Data(w, http.StatusOK, user)
}
