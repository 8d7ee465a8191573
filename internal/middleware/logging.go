// Package middleware contains the HTTP middleware that wraps every route:
// request logging and metrics, CORS, security headers and per-user rate
// limiting of AI routes.
//
// Each constructor returns the usual func(http.Handler) http.Handler so it
// can be handed straight to chi's r.Use.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/YadavAkhileshh/CrackBano/internal/auth"
	"github.com/YadavAkhileshh/CrackBano/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// the number of bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger logs one "request completed" line per request and reports it to
// rec. It must sit after chi's RequestID middleware to pick up the id.
//
// The level follows the status: 5xx logs at Error, 4xx at Warn, the rest
// at Info. Metrics are labelled with the chi route pattern, not the raw
// path.
func Logger(logger *slog.Logger, rec metrics.Recorder) func(http.Handler) http.Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			route := routePattern(r)
			rec.RecordHTTPRequest(r.Method, route, wrapped.statusCode, duration)

			attrs := []any{
				slog.String("requestID", chimw.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", duration),
				slog.Int64("bytes", wrapped.written),
			}
			if userID, ok := auth.UserIDFromContext(r.Context()); ok {
				attrs = append(attrs, slog.String("userID", userID))
			}

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

// routePattern returns the matched chi pattern, or "unmatched" for 404s
// that never hit a route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
