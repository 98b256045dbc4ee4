package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/felixge/httpsnoop"

	"github.com/iudanet/liftlog/pkg/api"
)

// RecoveryMiddleware превращает панику обработчика в 500 с api.ErrorResponse.
// Если обработчик уже начал ответ, паника только логируется.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := false
			tracked := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						started = true
						next(code)
					}
				},
				Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						started = true
						return next(b)
					}
				},
			})

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				logger.LogAttrs(r.Context(), slog.LevelError, "Panic recovered",
					slog.Any("panic", p),
					slog.String("request_id", RequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("response_started", started),
					slog.String("stack", string(debug.Stack())),
				)

				if !started {
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(tracked, r)
		})
	}
}

// writeError отвечает JSON api.ErrorResponse со статусом code
func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
