package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/lostfound/internal/store"
)

// Chat timestamp encodings.
const (
	TimestampISO     = "iso"
	TimestampSeconds = "seconds"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	claims          store.DataStore
	chat            store.ChatStore
	logger          zerolog.Logger
	timestampFormat string
}

// NewHandler creates a new Handler with the given stores. timestampFormat
// selects how chat timestamps are written: TimestampISO or TimestampSeconds.
func NewHandler(claims store.DataStore, chat store.ChatStore, logger zerolog.Logger, timestampFormat string) *Handler {
	if timestampFormat != TimestampISO {
		timestampFormat = TimestampSeconds
	}
	return &Handler{
		claims:          claims,
		chat:            chat,
		logger:          logger,
		timestampFormat: timestampFormat,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Data sends data wrapped in the {"data": ...} envelope.
func (h *Handler) Data(w http.ResponseWriter, status int, data interface{}) {
	h.JSON(w, status, map[string]interface{}{"data": data})
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeName trims and limits name to 100 characters, removing control characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}

	return name
}
