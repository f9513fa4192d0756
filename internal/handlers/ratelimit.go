package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/threeplay/backend/internal/logging"
)

// RateLimiter is the minimal interface required to guard sensitive endpoints.
type RateLimiter interface {
	Allow(key string) bool
}

// throttled responds 429 and reports true when the caller exceeded the limit
// for scope. X-Forwarded-For is only consulted when trustProxy is set.
func throttled(limiter RateLimiter, w http.ResponseWriter, r *http.Request, scope string, trustProxy bool) bool {
	if limiter == nil {
		return false
	}
	key := rateLimitKey(r, scope, trustProxy)
	if limiter.Allow(key) {
		return false
	}

	ctx := r.Context()
	logging.FromContext(ctx).Warn("rate limit exceeded", "scope", scope, "key", key)
	w.Header().Set("Retry-After", "60")
	respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts, try again later"})
	return true
}

func rateLimitKey(r *http.Request, scope string, trustProxy bool) string {
	ip := clientIP(r, trustProxy)
	if scope == "" {
		return ip
	}
	return fmt.Sprintf("%s:%s", scope, ip)
}

// clientIP returns the peer address. Behind a trusted proxy it is the
// rightmost X-Forwarded-For hop, the one the proxy itself appended.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		hops := r.Header.Values("X-Forwarded-For")
		if len(hops) > 0 {
			last := hops[len(hops)-1]
			if i := strings.LastIndex(last, ","); i >= 0 {
				last = last[i+1:]
			}
			if hop := strings.TrimSpace(last); hop != "" {
				return hop
			}
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
