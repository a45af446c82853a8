package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RafexStrike/eventment-server/internal/api/handlers"
	"github.com/RafexStrike/eventment-server/internal/config"
	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/storage/memory"
	"github.com/RafexStrike/eventment-server/internal/testauth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerEmail = "owner@example.com"
	frontend   = "http://localhost:5173"
)

type testServer struct {
	handler http.Handler
	owner   *testauth.TestAuthenticator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	owner, err := testauth.NewDevAuthenticator(ownerEmail)
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.Environment = "test"
	cfg.RateLimit.PublicPerMinute = 0
	cfg.RateLimit.MemberPerMinute = 0

	handler := NewRouter(cfg, zerolog.Nop(), Dependencies{
		Store:     memory.New(),
		Verifier:  owner.Verifier(),
		Version:   "1.2.3",
		GitCommit: "abc123",
		BuildDate: "2026-10-14T00:00:00Z",
	})
	return &testServer{handler: handler, owner: owner}
}

func (s *testServer) do(t *testing.T, method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		s.owner.AddAuth(req)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRootBanner(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, handlers.RootMessage, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/nope", "", false).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct{ method, target, body string }{
		{http.MethodPost, "/events/post", `{"email":"owner@example.com"}`},
		{http.MethodGet, "/events?email=owner@example.com", ""},
		{http.MethodDelete, "/myEvent/delete/6650f0c2a1b2c3d4e5f60718?email=owner@example.com", ""},
		{http.MethodPut, "/myEvent/put/6650f0c2a1b2c3d4e5f60718", `{"email":"owner@example.com"}`},
		{http.MethodPost, "/joinedEvent", `{"email":"owner@example.com","groupID":"g1"}`},
		{http.MethodGet, "/joinedEvent?email=owner@example.com", ""},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			rec := srv.do(t, route.method, route.target, route.body, false)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestProtectedRoutesRejectOtherOwners(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct{ name, method, target, body string }{
		{"query email", http.MethodGet, "/events?email=someone@example.com", ""},
		{"body email", http.MethodPost, "/events/post", `{"email":"someone@example.com","eventTitle":"x"}`},
		{"no email", http.MethodGet, "/joinedEvent", ""},
		{"own query hiding foreign body", http.MethodPost, "/joinedEvent?email=owner@example.com", `{"email":"victim@example.com","groupID":"g1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(t, tc.method, tc.target, tc.body, true)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestOwnerLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/events/post",
		`{"email":"owner@example.com","eventTitle":"River cleanup","eventType":"Cleanup","startDate":"2099-01-01T08:00:00.000Z","isFeatured":"true"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var created events.InsertResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.True(t, created.Acknowledged)

	rec = srv.do(t, http.MethodGet, "/events/get/"+created.InsertedID, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "River cleanup")

	rec = srv.do(t, http.MethodGet, "/events/get?type=Cleanup&search=RIVER", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.InsertedID)

	rec = srv.do(t, http.MethodGet, "/events/featured", "", false)
	assert.Contains(t, rec.Body.String(), created.InsertedID)

	rec = srv.do(t, http.MethodGet, "/events?email="+ownerEmail, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.InsertedID)

	rec = srv.do(t, http.MethodPut, "/myEvent/put/"+created.InsertedID,
		`{"email":"owner@example.com","eventTitle":"River cleanup, day two"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"matchedCount":1,"modifiedCount":1,"upsertedCount":0,"upsertedId":null}`, rec.Body.String())

	groupBody := `{"email":"owner@example.com","groupID":"` + created.InsertedID + `","startDate":"2099-01-01T08:00:00.000Z"}`
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/joinedEvent", groupBody, true).Code)

	rec = srv.do(t, http.MethodPost, "/joinedEvent", groupBody, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Already joined this event.")

	rec = srv.do(t, http.MethodGet, "/joinedEvent?email="+ownerEmail, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var joinedDocs []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&joinedDocs))
	assert.Len(t, joinedDocs, 1)

	rec = srv.do(t, http.MethodDelete, "/myEvent/delete/"+created.InsertedID+"?email="+ownerEmail, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/events/get/"+created.InsertedID, "", false)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestMethodPatternsRejectOtherVerbs(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPatch, "/events/featured", "", false)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/events/featured", nil)
	req.Header.Set("Origin", frontend)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, frontend, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/events/post", nil)
	req.Header.Set("Origin", frontend)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/events/featured", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/readyz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/version", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)

	srv.do(t, http.MethodGet, "/events/featured", "", false)
	rec = srv.do(t, http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eventment_http_requests_total`)
	assert.Contains(t, rec.Body.String(), `path="/events/featured"`)
}
