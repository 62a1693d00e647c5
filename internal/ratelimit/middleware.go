package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mandi-labs/backend-mandi/internal/common"
)

// Config derives the limit key and thresholds for one guarded route group.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler enforces a rate limit in front of the wrapped handler. Limiter
// errors fail open: a Redis outage must not take the write paths down with
// it.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

// Middleware applies the limit and sets the X-RateLimit-* headers.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Config.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		h.setHeaders(w, remaining, resetAt)
		if !allowed {
			retryAfter := max(int(time.Until(resetAt).Seconds()), 0)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, common.CodeRateLimited, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h Handler) setHeaders(w http.ResponseWriter, remaining int, resetAt time.Time) {
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Config.Max, 0)))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}
