package middleware

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"

	"github.com/iudanet/liftlog/pkg/api"
)

// LoggingMiddleware пишет по одной записи на запрос: кто, что, с каким
// статусом и за сколько. 4xx логируются как WARN, 5xx как ERROR.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			logger.LogAttrs(r.Context(), levelFor(m.Code), "HTTP request",
				slog.String("request_id", RequestID(r.Context())),
				slog.String("client_id", r.Header.Get(api.ClientIDHeader)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", m.Code),
				slog.Int64("duration_ms", m.Duration.Milliseconds()),
				slog.Int64("bytes_written", m.Written),
			)
		})
	}
}

// LoggingWithSkip не логирует запросы к skipPaths (health, scrape метрик)
func LoggingWithSkip(logger *slog.Logger, skipPaths []string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		logged := LoggingMiddleware(logger)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			logged.ServeHTTP(w, r)
		})
	}
}

func levelFor(code int) slog.Level {
	switch {
	case code >= http.StatusInternalServerError:
		return slog.LevelError
	case code >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
