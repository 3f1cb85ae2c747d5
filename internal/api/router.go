package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/grocer/internal/api/handlers"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

// Handlers groups the route handlers
type Handlers struct {
	Health    *handlers.HealthHandler
	Recommend *handlers.RecommendHandler
	Signals   *handlers.SignalsHandler
}

// RouterOptions toggles optional routes and middleware
type RouterOptions struct {
	MetricsEnabled     bool
	RateLimiter        *redis.RateLimiter // nil disables rate limiting
	RateLimitPerMinute int
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: all routes are registered here
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// API routes stay on the root router so a method mismatch answers 405
	limit := func(h http.HandlerFunc) http.Handler { return h }
	if opts.RateLimiter != nil && opts.RateLimitPerMinute > 0 {
		mw := rateLimitMiddleware(opts.RateLimiter, opts.RateLimitPerMinute, log)
		limit = func(h http.HandlerFunc) http.Handler { return mw(h) }
	}

	// Recommendation endpoints
	r.Handle("/api/recommendations", limit(h.Recommend.Recommend)).Methods("POST")
	r.Handle("/api/recommendations/stream", limit(h.Recommend.Stream)).Methods("GET")

	// Signal endpoints
	r.Handle("/api/signals/stores", limit(h.Signals.GetStoreMetrics)).Methods("GET")
	r.Handle("/api/signals/trends", limit(h.Signals.GetMarketTrends)).Methods("GET")
	r.Handle("/api/signals/reviews", limit(h.Signals.GetProductReviews)).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies the per-client sliding window.
// Limiter errors let the request through.
func rateLimitMiddleware(limiter *redis.RateLimiter, perMinute int, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, err := limiter.Allow(r.Context(), redis.APIRateLimit(clientIP(r), perMinute))
			if err != nil {
				log.WithError(err).Warn("Rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				w.Header().Set("Retry-After", "60")
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the remote host without port
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
