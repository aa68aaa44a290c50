package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/facegate/facegate/internal/web/middleware"
)

func newAdminFixture(t *testing.T) (*testPipeline, *AdminHandler, *middleware.AdminSessions) {
	t.Helper()
	p := newTestPipeline()
	sessions := middleware.NewAdminSessions("test-secret", "root", "hunter2")
	return p, NewAdminHandler(p.store, sessions, p.audit), sessions
}

func TestAdminLogin(t *testing.T) {
	p, handler, _ := newAdminFixture(t)

	req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "root",
		"password": "hunter2",
	})
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var hasCookie bool
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" && c.HttpOnly {
			hasCookie = true
		}
	}
	if !hasCookie {
		t.Error("login did not set the admin session cookie")
	}

	logs, _ := p.store.RecentLogs(context.Background(), 1)
	if len(logs) == 0 || !strings.Contains(logs[0], "ADMIN LOGIN: root") {
		t.Errorf("login not audited: %v", logs)
	}
}

func TestAdminLoginRejected(t *testing.T) {
	p, handler, _ := newAdminFixture(t)

	req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "root",
		"password": "wrong",
	})
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assertStatusCode(t, rec, http.StatusUnauthorized)
	assertJSONError(t, rec, "Invalid credentials")

	logs, _ := p.store.RecentLogs(context.Background(), 1)
	if len(logs) == 0 || !strings.Contains(logs[0], "FAILED ADMIN LOGIN ATTEMPT: root") {
		t.Errorf("failed login not audited: %v", logs)
	}
}

func TestAdminLoginDisabledWithoutCredentials(t *testing.T) {
	p := newTestPipeline()
	sessions := middleware.NewAdminSessions("test-secret", "", "")
	handler := NewAdminHandler(p.store, sessions, p.audit)

	req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "",
		"password": "",
	})
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assertStatusCode(t, rec, http.StatusUnauthorized)
}

func TestAdminUsers(t *testing.T) {
	p, handler, _ := newAdminFixture(t)
	insertIdentity(t, p.store, "Jana", testEmbedding(0.1))
	insertIdentity(t, p.store, "Petr", testEmbedding(0.2))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec := httptest.NewRecorder()
	handler.Users(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Users []map[string]any `json:"users"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Users) != 2 {
		t.Fatalf("got %d users, want 2", len(resp.Users))
	}
	u := resp.Users[0]
	for _, field := range []string{"name", "class", "roll", "code", "registered_at"} {
		if u[field] == nil || u[field] == "" {
			t.Errorf("field %q missing from user listing: %v", field, u)
		}
	}
	// Embeddings and previews stay server-side.
	if _, ok := u["embedding"]; ok {
		t.Error("user listing leaks embeddings")
	}
}

func TestAdminLogs(t *testing.T) {
	p, handler, _ := newAdminFixture(t)
	p.audit.Record(context.Background(), "first event")
	p.audit.Record(context.Background(), "second event")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/logs", nil)
	rec := httptest.NewRecorder()
	handler.Logs(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		Logs []string `json:"logs"`
	}
	parseJSONResponse(t, rec, &resp)
	if len(resp.Logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(resp.Logs))
	}
	if !strings.HasSuffix(resp.Logs[0], "second event") {
		t.Errorf("logs not most-recent-first: %v", resp.Logs)
	}
}

func TestAdminLogsEmpty(t *testing.T) {
	_, handler, _ := newAdminFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/logs", nil)
	rec := httptest.NewRecorder()
	handler.Logs(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"logs":[]`) {
		t.Errorf("empty logs must encode as [], got %s", rec.Body.String())
	}
}

func TestAdminDeleteUser(t *testing.T) {
	p, handler, _ := newAdminFixture(t)
	insertIdentity(t, p.store, "Jana", testEmbedding(0.1))

	req := jsonRequest(t, http.MethodDelete, "/api/admin/user", map[string]string{"name": "Jana"})
	rec := httptest.NewRecorder()
	handler.DeleteUser(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	identity, err := p.store.GetIdentity(context.Background(), "Jana")
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if identity != nil {
		t.Error("identity survived deletion")
	}

	// Deleting again reports not found.
	req = jsonRequest(t, http.MethodDelete, "/api/admin/user", map[string]string{"name": "Jana"})
	rec = httptest.NewRecorder()
	handler.DeleteUser(rec, req)
	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestAdminEditUser(t *testing.T) {
	p, handler, _ := newAdminFixture(t)
	original := insertIdentity(t, p.store, "Jana", testEmbedding(0.1))

	req := jsonRequest(t, http.MethodPut, "/api/admin/user", map[string]string{
		"old_name": "Jana",
		"name":     "Jana Nováková",
		"class":    "11B",
		"roll":     "15",
	})
	rec := httptest.NewRecorder()
	handler.EditUser(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	identity, err := p.store.GetIdentity(context.Background(), "Jana Nováková")
	if err != nil || identity == nil {
		t.Fatalf("renamed identity: %v, %v", identity, err)
	}
	if identity.Class != "11B" || identity.Roll != "15" {
		t.Errorf("class/roll = %q/%q", identity.Class, identity.Roll)
	}
	if identity.Code != original.Code {
		t.Error("edit must not rotate the access code")
	}
	if identity.Embedding[0] != original.Embedding[0] {
		t.Error("edit must not touch the embedding")
	}

	old, _ := p.store.GetIdentity(context.Background(), "Jana")
	if old != nil {
		t.Error("old name still resolves after rename")
	}
}

func TestAdminEditUserCollision(t *testing.T) {
	p, handler, _ := newAdminFixture(t)
	insertIdentity(t, p.store, "Jana", testEmbedding(0.1))
	insertIdentity(t, p.store, "Petr", testEmbedding(0.2))

	req := jsonRequest(t, http.MethodPut, "/api/admin/user", map[string]string{
		"old_name": "Petr",
		"name":     "Jana",
		"class":    "10A",
		"roll":     "07",
	})
	rec := httptest.NewRecorder()
	handler.EditUser(rec, req)
	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestAdminEditUserNotFound(t *testing.T) {
	_, handler, _ := newAdminFixture(t)

	req := jsonRequest(t, http.MethodPut, "/api/admin/user", map[string]string{
		"old_name": "Nobody",
		"name":     "Somebody",
		"class":    "10A",
		"roll":     "07",
	})
	rec := httptest.NewRecorder()
	handler.EditUser(rec, req)
	assertStatusCode(t, rec, http.StatusNotFound)
}
