package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/testutil"
)

// Handler packages keep the first database they are given, so every check
// shares one server.
func TestServer(t *testing.T) {
	handler, clubID := newTestServer(t)

	t.Run("routes", func(t *testing.T) { checkRoutes(t, handler, clubID) })
	t.Run("session flow", func(t *testing.T) { checkSessionFlow(t, handler, clubID) })
}

func newTestServer(t *testing.T) (http.Handler, int64) {
	t.Helper()

	database := testutil.NewTestDB(t)
	club := testutil.CreateClub(t, database, "riverside")
	testutil.CreateCourt(t, database, club.ID, 1)

	cfg := &config.Config{}
	cfg.App.Name = "courtside"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.BaseDomain = "example.com"
	cfg.App.StaticDir = t.TempDir()
	cfg.App.SecretKey = "test-secret-key-for-server-tests-only"

	initHandlers(cfg, database, nil, nil, nil)
	return newServer(cfg, database).Handler, club.ID
}

func checkRoutes(t *testing.T, handler http.Handler, clubID int64) {
	tests := []struct {
		name   string
		method string
		host   string
		path   string
		status int
		want   string
	}{
		{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK, want: "OK"},
		{name: "directory", method: http.MethodGet, host: "example.com", path: "/", status: http.StatusOK, want: `href="/clubs/riverside"`},
		{name: "club subdomain", method: http.MethodGet, host: "riverside.example.com", path: "/", status: http.StatusOK, want: `id="court-grid"`},
		{name: "unknown subdomain", method: http.MethodGet, host: "nowhere.example.com", path: "/", status: http.StatusNotFound},
		{name: "club page", method: http.MethodGet, path: "/clubs/riverside", status: http.StatusOK, want: "Riverside Club"},
		{name: "list clubs", method: http.MethodGet, path: "/api/v1/clubs", status: http.StatusOK, want: `"slug":"riverside"`},
		{name: "club by slug", method: http.MethodGet, path: "/api/v1/club-slugs/riverside", status: http.StatusOK, want: `"branding"`},
		{name: "availability", method: http.MethodGet, path: fmt.Sprintf("/api/v1/clubs/%d/availability", clubID), status: http.StatusOK, want: `"courts"`},
		{name: "standings", method: http.MethodGet, path: fmt.Sprintf("/api/v1/clubs/%d/standings", clubID), status: http.StatusOK, want: `"standings"`},
		{name: "presets", method: http.MethodGet, path: "/api/v1/branding/presets", status: http.StatusOK, want: "Court Classic"},
		{name: "members need admin", method: http.MethodGet, path: fmt.Sprintf("/api/v1/clubs/%d/members", clubID), status: http.StatusUnauthorized},
		{name: "wrong method", method: http.MethodPatch, path: "/api/v1/clubs", status: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/nope", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.host != "" {
				req.Host = tt.host
			}
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Fatalf("expected body to contain %q, got %s", tt.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatalf("expected X-Request-ID header")
			}
		})
	}
}

func checkSessionFlow(t *testing.T, handler http.Handler, clubID int64) {
	body := `{"email":"Player@Test.com","password":"correct-horse","first_name":"Pat","last_name":"Player"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}

	authed := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Accept", "application/json")
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec = authed(http.MethodPost, fmt.Sprintf("/api/v1/clubs/%d/members/join", clubID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: %d %s", rec.Code, rec.Body.String())
	}

	rec = authed(http.MethodGet, "/api/v1/me/clubs")
	if rec.Code != http.StatusOK {
		t.Fatalf("my clubs: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Clubs []struct {
			Slug string `json:"slug"`
			Role string `json:"role"`
		} `json:"clubs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Clubs) != 1 || resp.Clubs[0].Slug != "riverside" || resp.Clubs[0].Role != "VISITOR" {
		t.Fatalf("unexpected clubs %+v", resp.Clubs)
	}

	rec = authed(http.MethodGet, fmt.Sprintf("/api/v1/clubs/%d/members", clubID))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("visitor member list: expected 403, got %d", rec.Code)
	}
}
