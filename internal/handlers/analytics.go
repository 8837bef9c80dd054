package handlers

import (
	"net/http"
)

// AnalyticsResponse summarises claim activity for reviewers.
type AnalyticsResponse struct {
	TotalClaims    int64            `json:"totalClaims"`
	ClaimsByStatus map[string]int64 `json:"claimsByStatus"`
	TotalMessages  int64            `json:"totalMessages"`
}

// Analytics returns claim and chat totals.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byStatus, err := h.claims.CountClaimsByStatus(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count claims")
		return
	}

	totalMessages, err := h.claims.SumMessageCount(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to sum messages")
		return
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	h.Data(w, http.StatusOK, AnalyticsResponse{
		TotalClaims:    total,
		ClaimsByStatus: byStatus,
		TotalMessages:  totalMessages,
	})
}
