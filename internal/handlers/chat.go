package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eldtechnologies/lostfound/internal/api/middleware"
	"github.com/eldtechnologies/lostfound/internal/metrics"
	"github.com/eldtechnologies/lostfound/internal/models"
)

const (
	maxChatContent   = 4096
	chatHistoryLimit = 500
)

// secondsTimestamp is the object form of a chat timestamp.
type secondsTimestamp struct {
	Seconds     int64 `json:"_seconds"`
	Nanoseconds int64 `json:"_nanoseconds"`
}

// ChatMessageResponse represents a chat message in API responses.
type ChatMessageResponse struct {
	ID             string      `json:"id"`
	SenderID       string      `json:"senderId"`
	SenderName     string      `json:"senderName,omitempty"`
	Content        string      `json:"content"`
	IsProofRequest bool        `json:"isProofRequest,omitempty"`
	Timestamp      interface{} `json:"timestamp"`
}

// PostChatRequest represents the post chat message request.
type PostChatRequest struct {
	Content        string `json:"content"`
	IsProofRequest bool   `json:"isProofRequest,omitempty"`
}

func (h *Handler) encodeTimestamp(ms int64) interface{} {
	t := time.UnixMilli(ms).UTC()
	if h.timestampFormat == TimestampISO {
		return t.Format("2006-01-02T15:04:05.000Z07:00")
	}
	return secondsTimestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

func (h *Handler) chatResponse(msg models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:             msg.ID,
		SenderID:       msg.SenderID,
		SenderName:     msg.SenderName,
		Content:        msg.Content,
		IsProofRequest: msg.IsProofRequest,
		Timestamp:      h.encodeTimestamp(msg.Timestamp),
	}
}

// authorizeClaim loads the claim named in the URL and checks that the caller
// owns it or is an admin. It writes the error response and returns nil on
// failure.
func (h *Handler) authorizeClaim(w http.ResponseWriter, r *http.Request, user *models.User) *models.Claim {
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusNotFound, "claim not found")
		return nil
	}

	claim, err := h.claims.GetClaim(r.Context(), claimID)
	if err != nil {
		h.logger.Error().Err(err).Str("claim_id", claimID.String()).Msg("claim lookup failed")
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil
	}
	if claim == nil {
		h.Error(w, http.StatusNotFound, "claim not found")
		return nil
	}

	if claim.UserID != user.ID && !user.IsAdmin() {
		h.Error(w, http.StatusForbidden, "not a participant of this claim")
		return nil
	}
	return claim
}

// GetClaimChat returns the full conversation of a claim, oldest first.
func (h *Handler) GetClaimChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	claim := h.authorizeClaim(w, r, user)
	if claim == nil {
		return
	}

	messages, err := h.chat.GetClaimMessages(r.Context(), claim.ID.String(), chatHistoryLimit)
	if err != nil {
		h.logger.Error().Err(err).Str("claim_id", claim.ID.String()).Msg("chat fetch failed")
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	resp := make([]ChatMessageResponse, len(messages))
	for i, msg := range messages {
		resp[i] = h.chatResponse(msg)
	}

	h.Data(w, http.StatusOK, resp)
}

// PostClaimChat appends a message to a claim conversation and returns the
// stored message.
func (h *Handler) PostClaimChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	claim := h.authorizeClaim(w, r, user)
	if claim == nil {
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// The JSON decoder replaces invalid bytes with U+FFFD, so check first.
	if !utf8.Valid(raw) {
		h.Error(w, http.StatusUnprocessableEntity, "content must be valid UTF-8")
		return
	}

	var req PostChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		h.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(req.Content) > maxChatContent {
		h.Error(w, http.StatusUnprocessableEntity, "content too long (max 4096 bytes)")
		return
	}

	msg := &models.ChatMessage{
		ClaimID:    claim.ID.String(),
		SenderID:   user.ID,
		SenderName: sanitizeName(user.Name),
		Content:    req.Content,
		// Only reviewers ask for proof of ownership.
		IsProofRequest: req.IsProofRequest && user.IsAdmin(),
	}

	if err := h.chat.AddMessage(r.Context(), msg); err != nil {
		h.logger.Error().Err(err).Str("claim_id", claim.ID.String()).Msg("chat store failed")
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	if err := h.claims.IncrementMessageCount(r.Context(), claim.ID); err != nil {
		h.logger.Warn().Err(err).Str("claim_id", claim.ID.String()).Msg("message count update failed")
	}
	metrics.ChatMessagesPosted.WithLabelValues(user.Role).Inc()

	h.Data(w, http.StatusCreated, h.chatResponse(*msg))
}
