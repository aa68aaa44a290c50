package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/storage/memory"
)

type stubExtractor struct{}

func (stubExtractor) FaceEmbeddings(ctx context.Context, imageData []byte) ([][]float32, error) {
	return [][]float32{make([]float32, 128)}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Load()
	cfg.Admin.Username = "root"
	cfg.Admin.Password = "hunter2"
	return NewServer(cfg, memory.NewStore(100), stubExtractor{}, 8080, "127.0.0.1", "test-secret")
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"storage":"memory"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAdminRoutesGuarded(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/logs"},
		{http.MethodDelete, "/api/admin/user"},
		{http.MethodPut, "/api/admin/user"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without session = %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestAdminLoginThroughRouter(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"username":"root","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d\nBody: %s", rec.Code, rec.Body.String())
	}

	// The issued cookie unlocks the guarded routes.
	usersReq := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	for _, c := range rec.Result().Cookies() {
		usersReq.AddCookie(c)
	}
	usersRec := httptest.NewRecorder()
	s.Router().ServeHTTP(usersRec, usersReq)

	if usersRec.Code != http.StatusOK {
		t.Fatalf("users status = %d\nBody: %s", usersRec.Code, usersRec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/capture-face", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
