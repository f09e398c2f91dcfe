package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		if s.metrics != nil {
			s.metrics.IncRequestsInFlight()
			defer s.metrics.DecRequestsInFlight()
		}

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", duration),
			zap.String("remote", clientAddr(r)),
		)
		if s.metrics != nil {
			s.metrics.RecordRequest(r.Method+" "+r.URL.Path, strconv.Itoa(ww.Status()), duration)
		}
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		client := clientAddr(r)
		if !s.limiter.Allow(client) {
			if s.metrics != nil {
				s.metrics.RecordRateLimitHit(client)
			}
			retryAfter := time.Until(s.limiter.ResetTime(client))
			w.Header().Set("Retry-After", strconv.Itoa(max(int(retryAfter.Seconds()), 1)))
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(s.limiter.RemainingRequests(client)))
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
