package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie the backend sets after login.
const CookieName = "jwt"

// CredentialMiddleware is a chi middleware that lifts the caller's token into the
// request context. Requests without a token pass through unchanged.
func CredentialMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		c := &Credential{Token: token}
		sub, err := SubjectFromToken(token)
		if err != nil {
			slog.Debug("token subject unavailable",
				"request_id", w.Header().Get("X-Request-ID"),
				"token_prefix", safePrefix(token),
				"error", err,
			)
		}
		c.Subject = sub

		next.ServeHTTP(w, r.WithContext(ContextWithCredential(r.Context(), c)))
	})
}

// extractToken prefers the Authorization header over the cookie.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if ok {
			return strings.TrimSpace(token)
		}
	}
	if ck, err := r.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// RequestIDMiddleware echoes X-Request-ID or assigns a fresh one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), reqID)))
	})
}

func generateRequestID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}

// safePrefix returns a safe-to-log prefix of a token (never the full token).
func safePrefix(token string) string {
	if len(token) > 12 {
		return token[:12] + "..."
	}
	return token
}
