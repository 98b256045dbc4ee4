package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/liftlog/pkg/api"
)

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		handler  http.HandlerFunc
		name     string
		wantBody string
		wantCode int
		wantJSON bool
	}{
		{
			name: "set listed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"sets":[]}`))
			},
			wantCode: http.StatusOK,
			wantBody: `{"sets":[]}`,
		},
		{
			name: "nil map write in handler",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var fields map[string]string
				fields["weight"] = "must not be negative"
			},
			wantCode: http.StatusInternalServerError,
			wantJSON: true,
		},
		{
			name: "panic with error value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(errors.New("sets table is gone"))
			},
			wantCode: http.StatusInternalServerError,
			wantJSON: true,
		},
		{
			name: "panic after response started",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":"1"`))
				panic("encoder failed")
			},
			wantCode: http.StatusCreated,
			wantBody: `{"id":"1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RecoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))(tt.handler)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/1/sets", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if !tt.wantJSON {
				assert.Equal(t, tt.wantBody, w.Body.String())
				return
			}

			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "Internal Server Error", resp.Error)
			assert.Equal(t, "internal server error", resp.Message)
		})
	}
}

func TestRecoveryMiddleware_AbortHandlerPropagates(t *testing.T) {
	handler := RecoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sets", nil))
	})
}

func TestRecoveryMiddleware_LogsPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestIDMiddleware(RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("set 17 has no session")
	})))

	const id = "0b5e1d8a-3f1c-4f63-9d59-0d4f1b8f6c2a"
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/1/sets/17", nil)
	req.Header.Set(api.RequestIDHeader, id)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var rec struct {
		Level           string `json:"level"`
		Msg             string `json:"msg"`
		Panic           string `json:"panic"`
		RequestID       string `json:"request_id"`
		Method          string `json:"method"`
		Path            string `json:"path"`
		Stack           string `json:"stack"`
		ResponseStarted bool   `json:"response_started"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "ERROR", rec.Level)
	assert.Equal(t, "Panic recovered", rec.Msg)
	assert.Equal(t, "set 17 has no session", rec.Panic)
	assert.Equal(t, id, rec.RequestID)
	assert.Equal(t, http.MethodPatch, rec.Method)
	assert.Equal(t, "/api/v1/sessions/1/sets/17", rec.Path)
	assert.False(t, rec.ResponseStarted)
	assert.Contains(t, rec.Stack, "goroutine")
}
