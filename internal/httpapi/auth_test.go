package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Ratheshan03/neucon-labs-sub000/internal/common"
	"github.com/Ratheshan03/neucon-labs-sub000/internal/models"
)

func postJSON(t *testing.T, s *Server, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(t, s, req)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestRegister_ValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"short name", map[string]string{"name": "A", "email": "a@x.com", "password": "secret1"}, "Name must be at least 2 characters"},
		{"bad email", map[string]string{"name": "Ann", "email": "nope", "password": "secret1"}, "Please provide a valid email address."},
		{"short password", map[string]string{"name": "Ann", "email": "a@x.com", "password": "abc"}, "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testDeps{})
			rec := postJSON(t, s, "/api/auth/register", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", rec.Code)
			}
			if got := errMessage(t, rec); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	fu := &fakeUsers{registerErr: common.ErrConflict}
	s := newTestServer(t, testDeps{users: fu})

	rec := postJSON(t, s, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d", rec.Code)
	}
}

func TestRegister_Success(t *testing.T) {
	hash := "$2a$12$notleaking"
	fu := &fakeUsers{registerOut: &models.User{
		ID: "u1", Name: "Ann", Email: "ann@x.com", Role: models.RoleAdmin, PasswordHash: &hash,
	}}
	s := newTestServer(t, testDeps{users: fu})

	rec := postJSON(t, s, "/api/auth/register", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Success || body.Message == "" {
		t.Fatalf("missing success envelope: %s", rec.Body.String())
	}
	if body.User["id"] != "u1" || body.User["role"] != "ADMIN" {
		t.Fatalf("unexpected projection: %v", body.User)
	}
	if _, ok := body.User["createdAt"]; !ok {
		t.Fatalf("createdAt missing from projection: %v", body.User)
	}
	if strings.Contains(rec.Body.String(), "notleaking") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestLogin_GenericFailure(t *testing.T) {
	fu := &fakeUsers{authErr: common.ErrUnauthorized}
	s := newTestServer(t, testDeps{users: fu})

	rec := postJSON(t, s, "/api/auth/login", map[string]string{"email": "x@x.com", "password": "nope"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	if got := errMessage(t, rec); got != "Invalid email or password" {
		t.Fatalf("wrong message: %q", got)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie on failed login")
	}
}

func TestLogin_SuccessSetsCookie(t *testing.T) {
	fu := &fakeUsers{authOut: &models.User{ID: "u1", Name: "Ann", Email: "ann@x.com", Role: models.RoleAdmin}}
	s := newTestServer(t, testDeps{users: fu})

	rec := postJSON(t, s, "/api/auth/login", map[string]string{"email": "ann@x.com", "password": "secret1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	c := sessionCookie(rec)
	if c == nil || c.Value == "" || !c.HttpOnly {
		t.Fatalf("missing HttpOnly session cookie: %+v", c)
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Token == "" || body.User.Role != "ADMIN" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRefresh_ReissuesWithCurrentRole(t *testing.T) {
	fu := &fakeUsers{refreshUser: &models.User{ID: "u1", Name: "Ann", Role: models.RoleAdmin}}
	s := newTestServer(t, testDeps{users: fu})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionFor(t, models.RoleUser)})
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if c := sessionCookie(rec); c == nil || c.Value == "" {
		t.Fatalf("refreshed cookie not set")
	}
}

func TestRefresh_NoToken(t *testing.T) {
	s := newTestServer(t, testDeps{})
	rec := doRequest(t, s, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	fu := &fakeUsers{refreshErr: common.ErrInvalidToken}
	s := newTestServer(t, testDeps{users: fu})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	s := newTestServer(t, testDeps{})
	rec := doRequest(t, s, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	c := sessionCookie(rec)
	if c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("cookie not expired: %+v", c)
	}
}

func TestGoogleLogin_RedirectsWithState(t *testing.T) {
	s := newTestServer(t, testDeps{})
	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("want 302, got %d", rec.Code)
	}

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") || !strings.Contains(loc, "state=") {
		t.Fatalf("unexpected redirect target: %q", loc)
	}

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c.Value
		}
	}
	if state == "" || !strings.Contains(loc, "state="+state) {
		t.Fatalf("state cookie and redirect disagree: cookie=%q loc=%q", state, loc)
	}
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	s := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=evil&code=x", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "good"})
	rec := doRequest(t, s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}
