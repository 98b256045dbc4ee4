package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iudanet/liftlog/pkg/api"
)

type requestIDKey struct{}

// RequestIDMiddleware проставляет идентификатор запроса.
// Клиентский X-Request-ID сохраняется, если это валидный UUID, иначе генерируется новый.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(api.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(api.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID возвращает идентификатор запроса из контекста
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
