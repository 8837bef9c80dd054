package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/handlers"
	"github.com/eldtechnologies/lostfound/internal/models"
	"github.com/eldtechnologies/lostfound/internal/store"
)

const secret = "router-test-secret"

var (
	owner    = models.User{ID: "owner-1", Name: "Olive", Role: models.RoleUser}
	stranger = models.User{ID: "stranger-1", Role: models.RoleUser}
	admin    = models.User{ID: "admin-1", Name: "Desk", Role: models.RoleAdmin}
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T, format string) *testServer {
	t.Helper()
	claims, err := store.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "claims.db"))
	require.NoError(t, err)
	t.Cleanup(claims.Close)

	r := NewRouter(zerolog.Nop(), claims, store.NewMemoryChatStore(), RouterConfig{
		JWTSecret:       secret,
		TimestampFormat: format,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(user *models.User, method, path string, body any) (*http.Response, map[string]any) {
	s.t.Helper()
	if body == nil {
		return s.doRaw(user, method, path, nil)
	}
	var buf bytes.Buffer
	require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	return s.doRaw(user, method, path, buf.Bytes())
}

// doRaw sends body exactly as given.
func (s *testServer) doRaw(user *models.User, method, path string, body []byte) (*http.Response, map[string]any) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, bytes.NewReader(body))
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		tok, err := crypto.IssueToken([]byte(secret), *user, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (s *testServer) fileClaim(user models.User) string {
	s.t.Helper()
	resp, body := s.do(&user, http.MethodPost, "/api/claims", map[string]string{"itemId": "item-42"})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(s.t, models.ClaimPending, data["status"])
	return data["id"].(string)
}

func TestRouter_ChatRoundTrip(t *testing.T) {
	s := newTestServer(t, handlers.TimestampSeconds)
	claimID := s.fileClaim(owner)
	chatPath := "/api/claims/" + claimID + "/chat"

	resp, body := s.do(&owner, http.MethodGet, chatPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])

	resp, body = s.do(&owner, http.MethodPost, chatPath, map[string]any{"content": "it is my blue bag", "isProofRequest": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sent := body["data"].(map[string]any)
	assert.NotEmpty(t, sent["id"])
	assert.Equal(t, owner.ID, sent["senderId"])
	assert.Nil(t, sent["isProofRequest"], "only admins may flag proof requests")
	ts := sent["timestamp"].(map[string]any)
	assert.Contains(t, ts, "_seconds")

	resp, _ = s.do(&admin, http.MethodPost, chatPath, map[string]any{"content": "send a photo", "isProofRequest": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = s.do(&owner, http.MethodGet, chatPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := body["data"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, sent["id"], msgs[0].(map[string]any)["id"])
	second := msgs[1].(map[string]any)
	assert.Equal(t, "Desk", second["senderName"])
	assert.Equal(t, true, second["isProofRequest"])

	resp, body = s.do(&owner, http.MethodGet, "/api/claims/my", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := body["data"].([]any)
	require.Len(t, mine, 1)
	assert.EqualValues(t, 2, mine[0].(map[string]any)["messageCount"])
}

func TestRouter_ISOTimestamps(t *testing.T) {
	s := newTestServer(t, handlers.TimestampISO)
	claimID := s.fileClaim(owner)

	resp, body := s.do(&owner, http.MethodPost, "/api/claims/"+claimID+"/chat", map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	raw := body["data"].(map[string]any)["timestamp"].(string)
	_, err := time.Parse(time.RFC3339Nano, raw)
	assert.NoError(t, err)
}

func TestRouter_ChatAccess(t *testing.T) {
	s := newTestServer(t, "")
	claimID := s.fileClaim(owner)
	chatPath := "/api/claims/" + claimID + "/chat"

	resp, _ := s.do(nil, http.MethodGet, chatPath, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(&stranger, http.MethodGet, chatPath, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(&admin, http.MethodGet, chatPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(&owner, http.MethodGet, "/api/claims/00000000-0000-0000-0000-000000000000/chat", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(&owner, http.MethodGet, "/api/claims/not-a-uuid/chat", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(&owner, http.MethodPost, chatPath, map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ChatContentValidation(t *testing.T) {
	s := newTestServer(t, "")
	claimID := s.fileClaim(owner)
	chatPath := "/api/claims/" + claimID + "/chat"

	resp, body := s.doRaw(&owner, http.MethodPost, chatPath, []byte("{\"content\":\"bad \xff\xfe byte\"}"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "content must be valid UTF-8", body["error"])

	resp, body = s.do(&owner, http.MethodPost, chatPath, map[string]string{"content": strings.Repeat("a", 4097)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "content too long (max 4096 bytes)", body["error"])

	resp, _ = s.doRaw(&owner, http.MethodPost, chatPath, []byte("{\"content\":"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(&owner, http.MethodPost, chatPath, map[string]string{"content": strings.Repeat("a", 4096)})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = s.do(&owner, http.MethodGet, chatPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := body["data"].([]any)
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].(map[string]any)["content"], 4096)
}

func TestRouter_AdminRoutes(t *testing.T) {
	s := newTestServer(t, "")
	s.fileClaim(owner)
	s.fileClaim(stranger)

	resp, _ := s.do(&owner, http.MethodGet, "/api/admin/claims/pending", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(&admin, http.MethodGet, "/api/admin/claims/pending?limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 2, body["total"])

	resp, body = s.do(&admin, http.MethodGet, "/api/admin/analytics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["totalClaims"])
}

func TestRouter_ProfileAndHealth(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := s.do(&owner, http.MethodGet, "/api/users/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, owner.ID, data["uid"])
	assert.Equal(t, "Olive", data["displayName"])

	resp, body = s.do(nil, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, body = s.do(nil, http.MethodGet, "/api", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "lostfound", body["name"])
}
