package ratelimit

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/kannou1/PFE/internal/auth"
	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/httputil"
	"github.com/kannou1/PFE/internal/telemetry"
)

const (
	defaultRPM = 30

	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// Middleware returns chi middleware that enforces a per-caller request rate.
// Callers are keyed by token subject, falling back to the client address for
// anonymous requests. cfg is read per request so reloads apply immediately.
func Middleware(limiter *Limiter, cfg func() config.RateLimitConfig, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rl := cfg()
			if !rl.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			reqID := w.Header().Get("X-Request-ID")

			rpm := rl.RequestsPerMinute
			if rpm <= 0 {
				rpm = defaultRPM
			}

			dimension, caller := callerKey(r)
			result, _ := limiter.Check(r.Context(), fmt.Sprintf("rpm:%s:%s", dimension, caller), int64(rpm), time.Minute)

			// Always set rate limit headers
			w.Header().Set(headerRateLimitRequests, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"dimension", dimension,
					"caller", caller,
					"limit", rpm,
				)
				metrics.RecordRateLimitHit(dimension)
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID,
					fmt.Sprintf("Rate limit exceeded: %d requests per minute. Retry after %s", rpm, result.ResetAt.Format(time.RFC3339)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) (dimension, caller string) {
	if c, ok := auth.CredentialFromContext(r.Context()); ok && c.Subject != "" {
		return "subject", c.Subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip", host
}
