package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDesk serves the claim chat endpoints for one claim.
type fakeDesk struct {
	mu       sync.Mutex
	messages []map[string]any
	next     int
}

func newFakeDesk() *fakeDesk {
	return &fakeDesk{messages: []map[string]any{{
		"id":        "m0",
		"senderUid": "desk-1",
		"content":   "Please describe the bag",
		"timestamp": map[string]any{"_seconds": time.Now().Add(-time.Minute).Unix(), "_nanoseconds": 0},
	}}}
}

func (d *fakeDesk) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/claims/c1/chat" && r.Method == http.MethodGet:
		d.mu.Lock()
		defer d.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"data": d.messages})
	case r.URL.Path == "/api/claims/c1/chat" && r.Method == http.MethodPost:
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		d.mu.Lock()
		d.next++
		msg := map[string]any{
			"id":        fmt.Sprintf("s%d", d.next),
			"senderId":  "u1",
			"content":   req.Content,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		}
		d.messages = append(d.messages, msg)
		d.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": msg})
	case strings.HasPrefix(r.URL.Path, "/api/claims/"):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "claim not found"})
	case r.URL.Path == "/api/items":
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": "i1", "title": "Blue backpack", "type": "lost", "location": "Library"},
			{"id": "i2", "title": "Keys", "type": "found", "location": "Gym"},
		}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func runCLI(t *testing.T, srvURL, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOSTFOUND_USER", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--url", srvURL, "--token", "tok", "--user", "u1"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestChatSession(t *testing.T) {
	desk := newFakeDesk()
	srv := httptest.NewServer(desk)
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "hello desk\n/view\n/quit\n", "chat", "c1")
	require.NoError(t, err)

	assert.Contains(t, out, "Admin: Please describe the bag")
	assert.Contains(t, out, "You: hello desk")
	assert.Contains(t, out, "--- 2 messages (synced) ---")
	// Once when confirmed, once more in the /view redraw.
	assert.Equal(t, 2, strings.Count(out, "You: hello desk"))
}

func TestChatSession_UnknownClaim(t *testing.T) {
	srv := httptest.NewServer(newFakeDesk())
	defer srv.Close()

	_, err := runCLI(t, srv.URL, "", "chat", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestItemsSearch(t *testing.T) {
	srv := httptest.NewServer(newFakeDesk())
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "", "items", "--search", "BACKPACK")
	require.NoError(t, err)
	assert.Contains(t, out, "Blue backpack")
	assert.NotContains(t, out, "Keys")
}

func TestRejectRequiresRemarks(t *testing.T) {
	srv := httptest.NewServer(newFakeDesk())
	defer srv.Close()

	_, err := runCLI(t, srv.URL, "", "reject", "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--remarks")
}
