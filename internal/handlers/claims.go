package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/eldtechnologies/lostfound/internal/api/middleware"
	"github.com/eldtechnologies/lostfound/internal/metrics"
	"github.com/eldtechnologies/lostfound/internal/models"
)

// CreateClaimRequest represents the claim filing request body.
type CreateClaimRequest struct {
	ItemID string `json:"itemId"`
}

// PendingClaimsResponse is the admin review queue.
type PendingClaimsResponse struct {
	Data  []models.Claim `json:"data"`
	Total int            `json:"total"`
}

// CreateClaim files a pending claim for the caller.
func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.ItemID == "" {
		h.Error(w, http.StatusBadRequest, "itemId is required")
		return
	}
	if len(req.ItemID) > 128 {
		h.Error(w, http.StatusBadRequest, "itemId too long")
		return
	}

	claim, err := h.claims.CreateClaim(r.Context(), req.ItemID, user.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("item_id", req.ItemID).Msg("claim create failed")
		h.Error(w, http.StatusInternalServerError, "failed to create claim")
		return
	}
	metrics.ClaimsFiled.Inc()

	h.Data(w, http.StatusCreated, claim)
}

// MyClaims lists the caller's claims, newest first.
func (h *Handler) MyClaims(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	claims, err := h.claims.ListClaimsByUser(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.Data(w, http.StatusOK, claims)
}

// PendingClaims lists claims awaiting review, oldest first.
func (h *Handler) PendingClaims(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 50
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 200 {
		limit = 200
	}

	offset := 0
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	claims, total, err := h.claims.ListClaimsByStatus(r.Context(), models.ClaimPending, limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, PendingClaimsResponse{
		Data:  claims,
		Total: total,
	})
}
