package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kyc_arena/internal/config"
	"kyc_arena/internal/db"
	"kyc_arena/internal/domain"
	"kyc_arena/internal/middleware"
	"kyc_arena/internal/service"
	"kyc_arena/internal/session"
	"kyc_arena/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	svc      *service.Service
	sessions *session.MemoryStore
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := db.Open(&config.Config{DBDriver: "sqlite", DBName: "file::memory:", IsProd: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := session.NewMemoryStore(time.Hour)
	svc := service.New(gdb, utils.NewCache(nil, time.Minute), store)
	return &testEnv{
		svc:      svc,
		sessions: store,
		router:   NewRouter(svc, Sessions{Store: store, Secret: testSecret, TTL: time.Hour}),
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) user(t *testing.T, name, role string, approved bool) *domain.User {
	t.Helper()
	u, err := e.svc.CreateUser(context.Background(), service.NewUser{
		Username: name, Password: "pw-" + name, Role: role, Approved: approved,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) login(t *testing.T, name string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": name, "password": "pw-" + name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "Alice", "password": "hunter2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, domain.RoleUser, user["role"])
	assert.Equal(t, false, user["isApproved"])

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	e.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	dup := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "hunter2"})
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Equal(t, "Username already exists", decode(t, dup)["error"])
}

func TestLoginAndLogout(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "bob", domain.RoleUser, true)

	bad := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "bob", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, service.MsgInvalidCredentials, decode(t, bad)["error"])

	token := e.login(t, "bob")
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/auth/me", token, nil).Code)

	out := e.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, 0, e.sessions.Len())

	after := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

func TestBannedUser(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "carol", domain.RoleUser, true)
	token := e.login(t, "carol")

	// Disable behind the session's back; the next request must notice
	require.NoError(t, e.svc.DB().Model(&domain.User{}).Where("id = ?", u.ID).Update("is_enabled", false).Error)

	w := e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.MsgBanned, decode(t, w)["error"])
	assert.Equal(t, 0, e.sessions.Len())

	login := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "carol", "password": "pw-carol"})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
	assert.Equal(t, service.MsgBanned, decode(t, login)["error"])
	assert.Equal(t, 0, e.sessions.Len())
}

func TestCapabilityPolicy(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "dave", domain.RoleUser, true)
	e.user(t, "root", domain.RoleAdmin, true)
	userToken := e.login(t, "dave")
	adminToken := e.login(t, "root")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"anonymous", http.MethodGet, "/api/submissions", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/submissions", "not-a-jwt", nil, http.StatusUnauthorized},
		{"user lists users", http.MethodGet, "/api/users", userToken, nil, http.StatusForbidden},
		{"user exports", http.MethodGet, "/api/submissions/export", userToken, nil, http.StatusForbidden},
		{"user sets verdict", http.MethodPatch, "/api/submissions/1/status", userToken, gin.H{"status": "good"}, http.StatusForbidden},
		{"user creates exchange", http.MethodPost, "/api/exchanges", userToken, gin.H{"name": "X"}, http.StatusForbidden},
		{"user closes portal", http.MethodPatch, "/api/settings/portal-status", userToken, gin.H{"isOpen": false}, http.StatusForbidden},
		{"user reads portal", http.MethodGet, "/api/settings/portal-status", userToken, nil, http.StatusOK},
		{"admin lists users", http.MethodGet, "/api/users", adminToken, nil, http.StatusOK},
		{"bad id", http.MethodPatch, "/api/users/abc/approve", adminToken, nil, http.StatusBadRequest},
		{"unknown user", http.MethodPatch, "/api/users/999/approve", adminToken, nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := e.do(t, http.MethodGet, "/api/users", userToken, nil)
	assert.Equal(t, "Admin access required", decode(t, w)["error"])
}

func TestSubmissionVerdictFlow(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "erin", domain.RoleUser, true)
	e.user(t, "root", domain.RoleAdmin, true)
	userToken := e.login(t, "erin")
	adminToken := e.login(t, "root")

	w := e.do(t, http.MethodPost, "/api/exchanges", adminToken, gin.H{"name": "Binance", "priceUsdt": "10"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "10.00", decode(t, w)["priceUsdt"])

	w = e.do(t, http.MethodPost, "/api/submissions", userToken, gin.H{
		"email": "a@x.com", "passwordHash": "p", "exchange": "Binance",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode(t, w)
	assert.Equal(t, "pending", sub["status"])
	assert.NotContains(t, sub, "passwordHash")
	id := int(sub["id"].(float64))

	path := "/api/submissions/" + itoa(id) + "/status"
	bad := e.do(t, http.MethodPatch, path, adminToken, gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	w = e.do(t, http.MethodPatch, path, adminToken, gin.H{"status": "good"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "good", decode(t, w)["status"])

	st := decode(t, e.do(t, http.MethodGet, "/api/auth/stats", userToken, nil))
	assert.Equal(t, float64(1), st["totalSubmissions"])
	assert.Equal(t, float64(1), st["totalGood"])
	assert.Equal(t, "10.00", st["totalEarnings"])
	assert.Equal(t, "10.00", st["lifetimeEarnings"])

	w = e.do(t, http.MethodGet, "/api/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Your submission for Binance (a@x.com) was marked as GOOD", notes[0]["message"])
	assert.Equal(t, false, notes[0]["read"])

	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/notifications/mark-read", userToken, nil).Code)

	w = e.do(t, http.MethodPost, "/api/submissions/delete-non-pending", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(1), resp["deletedCount"])
}

func TestListSubmissionsShapes(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "fay", domain.RoleUser, true)
	e.user(t, "root", domain.RoleAdmin, true)
	userToken := e.login(t, "fay")
	adminToken := e.login(t, "root")
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/exchanges", adminToken, gin.H{"name": "OKX", "priceUsdt": 5}).Code)
	for _, email := range []string{"1@x.com", "2@x.com", "3@x.com"} {
		w := e.do(t, http.MethodPost, "/api/submissions", userToken, gin.H{"email": email, "passwordHash": "p", "exchange": "OKX"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := e.do(t, http.MethodGet, "/api/submissions", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var own []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &own))
	assert.Len(t, own, 3)

	page := decode(t, e.do(t, http.MethodGet, "/api/submissions?page=2&limit=2", adminToken, nil))
	assert.Equal(t, float64(3), page["total"])
	assert.Equal(t, float64(2), page["page"])
	assert.Equal(t, float64(2), page["totalPages"])
	data := page["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "fay", data[0].(map[string]any)["username"])

	bad := e.do(t, http.MethodGet, "/api/submissions?status=unknown", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestExportCSV(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "gus", domain.RoleUser, true)
	e.user(t, "root", domain.RoleAdmin, true)
	userToken := e.login(t, "gus")
	adminToken := e.login(t, "root")
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/exchanges", adminToken, gin.H{"name": "Kraken"}).Code)
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/submissions", userToken, gin.H{
		"email": "g@x.com", "passwordHash": "p", "exchange": "Kraken",
	}).Code)

	w := e.do(t, http.MethodGet, "/api/submissions/export?format=csv", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "submissions.csv")
	lines := bytes.Split(bytes.TrimSpace(w.Body.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "id,username,email,exchange,status,notes,createdAt,updatedAt", string(lines[0]))
	assert.Contains(t, string(lines[1]), "gus,g@x.com,Kraken,pending")
	assert.NotContains(t, w.Body.String(), "$2a$")

	w = e.do(t, http.MethodGet, "/api/submissions/export", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "gus", rows[0]["username"])
}

func TestPortalStatus(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "hal", domain.RoleUser, true)
	e.user(t, "root", domain.RoleAdmin, true)
	userToken := e.login(t, "hal")
	adminToken := e.login(t, "root")
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/exchanges", adminToken, gin.H{"name": "Bybit"}).Code)

	assert.Equal(t, true, decode(t, e.do(t, http.MethodGet, "/api/settings/portal-status", userToken, nil))["isOpen"])

	bad := e.do(t, http.MethodPatch, "/api/settings/portal-status", adminToken, gin.H{"isOpen": "no"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, "isOpen must be a boolean", decode(t, bad)["error"])

	w := e.do(t, http.MethodPatch, "/api/settings/portal-status", adminToken, gin.H{"isOpen": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, e.do(t, http.MethodGet, "/api/settings/portal-status", userToken, nil))["isOpen"])

	closed := e.do(t, http.MethodPost, "/api/submissions", userToken, gin.H{"email": "h@x.com", "passwordHash": "p", "exchange": "Bybit"})
	assert.Equal(t, http.StatusForbidden, closed.Code)

	asAdmin := e.do(t, http.MethodPost, "/api/submissions", adminToken, gin.H{"email": "r@x.com", "passwordHash": "p", "exchange": "Bybit"})
	assert.Equal(t, http.StatusCreated, asAdmin.Code)
}

func TestExchangeVisibility(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "ivy", domain.RoleUser, true)
	e.user(t, "root", domain.RoleAdmin, true)
	userToken := e.login(t, "ivy")
	adminToken := e.login(t, "root")

	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/exchanges", adminToken, gin.H{"name": "Live", "priceUsdt": "1.5"}).Code)
	w := e.do(t, http.MethodPost, "/api/exchanges", adminToken, gin.H{"name": "Dead", "isActive": false})
	require.Equal(t, http.StatusCreated, w.Code)
	deadID := int(decode(t, w)["id"].(float64))

	var list []map[string]any
	require.NoError(t, json.Unmarshal(e.do(t, http.MethodGet, "/api/exchanges", userToken, nil).Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "1.50", list[0]["priceUsdt"])

	require.NoError(t, json.Unmarshal(e.do(t, http.MethodGet, "/api/exchanges", adminToken, nil).Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = e.do(t, http.MethodPatch, "/api/exchanges/"+itoa(deadID)+"/price", adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(t, http.MethodPatch, "/api/exchanges/"+itoa(deadID)+"/price", adminToken, gin.H{"priceUsdt": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = e.do(t, http.MethodPatch, "/api/exchanges/"+itoa(deadID)+"/price", adminToken, gin.H{"priceUsdt": "2.345"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2.35", decode(t, w)["priceUsdt"])
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
