package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doctor_crm_gateway/auth"
	"doctor_crm_gateway/models"
	"doctor_crm_gateway/session"
)

func TestLoginOpensGatewaySession(t *testing.T) {
	var gotCreds map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/doctors/login" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotCreds)
		w.Write([]byte(`{"success":true,"token":"upstream-jwt","doctor_id":"doc-9"}`))
	}))
	defer srv.Close()

	app, _ := newTestApp(t, srv.URL)
	r := newTestRouter(app)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors/login",
		strings.NewReader(`{"email":"doc@example.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status %d, body %s", w.Code, w.Body.String())
	}
	if gotCreds["email"] != "doc@example.com" {
		t.Fatalf("credentials not forwarded: %v", gotCreds)
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if !resp.Success || resp.Token == "" || resp.DoctorID != "doc-9" {
		t.Fatalf("wrong login response: %+v", resp)
	}
	if resp.Token == "upstream-jwt" {
		t.Fatal("gateway must mint its own token, not leak the upstream one")
	}

	// The returned token resolves to a stored session holding the
	// upstream token and identity.
	sessionID, role, err := auth.ParseToken(app.Cfg.JWTSecret, resp.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if role != session.RoleDoctor {
		t.Fatalf("role = %q", role)
	}
	sess, err := app.Sessions.Read(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if sess.UpstreamToken != "upstream-jwt" || sess.UserID != "doc-9" || sess.Email != "doc@example.com" {
		t.Fatalf("stored session wrong: %+v", sess)
	}
}

func TestLoginBadCredentialsSurfaceUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	}))
	defer srv.Close()

	app, _ := newTestApp(t, srv.URL)
	r := newTestRouter(app)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors/login",
		strings.NewReader(`{"email":"doc@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestFailingWidgetDoesNotBlockSiblings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case statsPath:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"message":"stats exploded"}`))
		case recentLeadsPath:
			w.Write([]byte(`{"success":true,"patients":[{"_id":"lead-1","firstName":"Ana"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	app, token := newTestApp(t, srv.URL)
	r := newTestRouter(app)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	stats := get("/api/v1/doctors/stats")
	if stats.Code != http.StatusInternalServerError {
		t.Fatalf("stats status %d, want 500", stats.Code)
	}
	if !strings.Contains(stats.Body.String(), "stats exploded") {
		t.Fatalf("server message not surfaced: %s", stats.Body.String())
	}

	recent := get("/api/v1/doctors/recent-patients")
	if recent.Code != http.StatusOK {
		t.Fatalf("recent leads must not be taken down by the stats failure: %d", recent.Code)
	}
	if !strings.Contains(recent.Body.String(), "lead-1") {
		t.Fatalf("recent leads body wrong: %s", recent.Body.String())
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"patients":[]}`))
	}))
	defer srv.Close()

	app, token := newTestApp(t, srv.URL)
	r := newTestRouter(app)

	get := func(authHeader string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors/patients", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("no header", func(t *testing.T) {
		if code := get(""); code != http.StatusUnauthorized {
			t.Fatalf("status %d", code)
		}
	})
	t.Run("malformed header", func(t *testing.T) {
		if code := get("Token abc"); code != http.StatusUnauthorized {
			t.Fatalf("status %d", code)
		}
	})
	t.Run("garbage token", func(t *testing.T) {
		if code := get("Bearer not.a.jwt"); code != http.StatusUnauthorized {
			t.Fatalf("status %d", code)
		}
	})
	t.Run("wrong signing secret", func(t *testing.T) {
		forged, _, err := auth.GenerateToken("other-secret", session.RoleDoctor)
		if err != nil {
			t.Fatal(err)
		}
		if code := get("Bearer " + forged); code != http.StatusUnauthorized {
			t.Fatalf("status %d", code)
		}
	})
	t.Run("valid token still works", func(t *testing.T) {
		if code := get("Bearer " + token); code != http.StatusOK {
			t.Fatalf("status %d", code)
		}
	})
}

func TestLogoutClearsSessionEvenWhenUpstreamFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/logout") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"patients":[]}`))
	}))
	defer srv.Close()

	app, token := newTestApp(t, srv.URL)
	r := newTestRouter(app)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/doctors/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("logout status %d, body %s", w.Code, w.Body.String())
	}

	// The token is now a dangling reference; every protected route 401s.
	sessionID, _, err := auth.ParseToken(app.Cfg.JWTSecret, token)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := app.Sessions.Read(context.Background(), sessionID); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("session survived logout: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/doctors/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}
