package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "0.3.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

func runCheck(ctx context.Context, p pinger) Check {
	if p == nil {
		return Check{Status: "fail", Message: "not configured"}
	}
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return Check{Status: "fail", Message: "connection failed"}
	}
	return Check{Status: "pass", Latency: time.Since(start).String()}
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]Check{
		"claims": runCheck(ctx, h.claims),
		"chat":   runCheck(ctx, h.chat),
	}

	status := "healthy"
	statusCode := http.StatusOK
	for _, c := range checks {
		if c.Status != "pass" {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// Root handles the root endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Name:    "lostfound",
		Version: version,
		Endpoints: []string{
			"POST /api/claims",
			"GET /api/claims/my",
			"GET /api/claims/{id}/chat",
			"POST /api/claims/{id}/chat",
			"GET /api/users/profile",
			"GET /api/admin/claims/pending",
			"GET /api/admin/analytics",
		},
	})
}
