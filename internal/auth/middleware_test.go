package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runCredential(t *testing.T, req *http.Request) (*Credential, bool) {
	t.Helper()
	var (
		got *Credential
		ok  bool
	)
	handler := CredentialMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = CredentialFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	return got, ok
}

func TestCredentialMiddleware_NoToken(t *testing.T) {
	req := httptest.NewRequest("POST", "/chat", nil)
	if _, ok := runCredential(t, req); ok {
		t.Error("expected no credential in context")
	}
}

func TestCredentialMiddleware_BearerHeader(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"id": "u-42", "role": "etudiant"})
	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	c, ok := runCredential(t, req)
	if !ok {
		t.Fatal("expected credential in context")
	}
	if c.Token != token {
		t.Errorf("expected token to be forwarded verbatim")
	}
	if c.Subject != "u-42" {
		t.Errorf("expected subject u-42, got %q", c.Subject)
	}
}

func TestCredentialMiddleware_CookieFallback(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u-7"})
	req := httptest.NewRequest("POST", "/chat", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	c, ok := runCredential(t, req)
	if !ok {
		t.Fatal("expected credential from cookie")
	}
	if c.Subject != "u-7" {
		t.Errorf("expected subject u-7, got %q", c.Subject)
	}
}

func TestCredentialMiddleware_HeaderWinsOverCookie(t *testing.T) {
	header := signedToken(t, jwt.MapClaims{"id": "from-header"})
	cookie := signedToken(t, jwt.MapClaims{"id": "from-cookie"})
	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+header)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})

	c, _ := runCredential(t, req)
	if c == nil || c.Subject != "from-header" {
		t.Errorf("expected header token to win, got %+v", c)
	}
}

func TestCredentialMiddleware_OpaqueTokenStillForwarded(t *testing.T) {
	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	c, ok := runCredential(t, req)
	if !ok {
		t.Fatal("expected opaque token to be kept")
	}
	if c.Token != "not-a-jwt" || c.Subject != "" {
		t.Errorf("unexpected credential %+v", c)
	}
}

func TestCredentialMiddleware_NonBearerIgnored(t *testing.T) {
	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if _, ok := runCredential(t, req); ok {
		t.Error("expected Basic auth to be ignored")
	}
}

func TestSubjectFromToken(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    string
		wantErr bool
	}{
		{"id claim", jwt.MapClaims{"id": "a"}, "a", false},
		{"mongo id claim", jwt.MapClaims{"_id": "b"}, "b", false},
		{"sub claim", jwt.MapClaims{"sub": "c"}, "c", false},
		{"id preferred", jwt.MapClaims{"id": "a", "sub": "c"}, "a", false},
		{"no subject", jwt.MapClaims{"role": "admin"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubjectFromToken(signedToken(t, tt.claims))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req_given")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "req_given" || w.Header().Get("X-Request-ID") != "req_given" {
		t.Errorf("expected incoming id to be echoed, got ctx=%q header=%q", seen, w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if !strings.HasPrefix(seen, "req_") || w.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated id, got ctx=%q header=%q", seen, w.Header().Get("X-Request-ID"))
	}
}
