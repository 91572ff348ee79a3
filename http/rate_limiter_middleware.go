package http

import (
	"net"
	"net/http"
)

// RateLimitMiddleware rejects clients (by remote IP) that ran out of
// tokens. onReject, if set, is called for every rejected request.
func RateLimitMiddleware(
	limiter *RateLimiter,
	onReject func(),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				if onReject != nil {
					onReject()
				}
				writeJSON(w, http.StatusTooManyRequests, PredictResponse{
					Error: "rate limit exceeded",
					Code:  "rate_limited",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
