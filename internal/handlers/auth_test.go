package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/auth"
	"github.com/abrezinsky/awardpicks/internal/handlers"
)

func TestLogin(t *testing.T) {
	ts := newTestSetup(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/login", handlers.LoginRequest{Password: "wrong"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = ts.do(t, http.MethodPost, "/api/admin/login", handlers.LoginRequest{Password: testPassword})
	expectStatus(t, rec, http.StatusOK)
	session := decode[handlers.SessionResponse](t, rec)
	if !session.Authenticated || session.Token == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != session.Token || !cookie.HttpOnly {
		t.Errorf("expected HttpOnly session cookie, got %+v", cookie)
	}
}

func TestBearerToken(t *testing.T) {
	ts := newTestSetup(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/login", handlers.LoginRequest{Password: testPassword})
	token := decode[handlers.SessionResponse](t, rec).Token

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
}

func TestSessionAndLogout(t *testing.T) {
	ts := newTestSetup(t)

	rec := ts.do(t, http.MethodGet, "/api/admin/session", nil)
	expectStatus(t, rec, http.StatusOK)
	if decode[handlers.SessionResponse](t, rec).Authenticated {
		t.Error("expected no session without cookie")
	}

	rec = ts.admin(t, http.MethodGet, "/api/admin/session", nil)
	if !decode[handlers.SessionResponse](t, rec).Authenticated {
		t.Error("expected session with cookie")
	}

	rec = ts.admin(t, http.MethodPost, "/api/admin/logout", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.admin(t, http.MethodGet, "/api/admin/stats", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}
