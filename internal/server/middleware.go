package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Limiter decides whether another hit against key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// RateLimit rejects requests over limit per client address and route with
// 429. A nil limiter or a limiter error lets the request through.
func (s *Server) RateLimit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := s.cfg.Server.RateLimit
			if s.limiter == nil || !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			key := fmt.Sprintf("rate_limit:%s:%s", clientIP(r), route)
			ok, err := s.limiter.Allow(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				s.logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				s.metrics.rateLimited.Inc()
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", cfg.Window.Seconds()))
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too many requests, please try again later."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP reads the address set by middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
