package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
	"github.com/iudanet/liftlog/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	client = NewClient(baseURL+"/", WithTimeout(time.Second), WithClientID("node-1"))
	assert.Equal(t, baseURL, client.baseURL)
	assert.Equal(t, time.Second, client.httpClient.Timeout)
	assert.Equal(t, "node-1", client.clientID)
}

// TestClient_ClientIDHeader проверяет заголовок идентификатора клиента
func TestClient_ClientIDHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "node-1", r.Header.Get(api.ClientIDHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithClientID("node-1"))
	require.NoError(t, client.DeleteSet(context.Background(), 7, models.RemoteID("1")))
}

// TestClient_CreateSet проверяет успешное создание подхода
func TestClient_CreateSet(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sessions/7/sets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get(api.RequestIDHeader))
		assert.NoError(t, err)

		var req api.CreateSetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.ExerciseID)
		assert.Nil(t, req.Weight)
		require.NotNil(t, req.Reps)
		assert.Equal(t, 5, *req.Reps)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.SetResponse{
			ID:         "987",
			SessionID:  7,
			ExerciseID: 42,
			Reps:       req.Reps,
			CreatedAt:  created,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	set, err := client.CreateSet(context.Background(), 7, models.SetInput{ExerciseID: 42, Reps: models.Int(5)})

	require.NoError(t, err)
	assert.Equal(t, models.RemoteID("987"), set.ID)
	assert.Equal(t, int64(7), set.SessionID)
	assert.Equal(t, created, set.CreatedAt)
	assert.Nil(t, set.Weight)
}

// TestClient_UpdateSet проверяет отправку частичного обновления
func TestClient_UpdateSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/sessions/7/sets/987", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		// отсутствующие поля не передаются
		assert.Equal(t, map[string]any{"weight": 105.0}, raw)

		_ = json.NewEncoder(w).Encode(api.SetResponse{ID: "987", SessionID: 7, Weight: models.Float(105)})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	set, err := client.UpdateSet(context.Background(), 7, models.RemoteID("987"), models.SetUpdate{Weight: models.Float(105)})

	require.NoError(t, err)
	assert.Equal(t, 105.0, *set.Weight)
}

// TestClient_DeleteSet проверяет удаление
func TestClient_DeleteSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/sessions/7/sets/987", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.DeleteSet(context.Background(), 7, models.RemoteID("987")))
}

// TestClient_PlaceholderNeverSent проверяет, что плейсхолдер не уходит на сервер
func TestClient_PlaceholderNeverSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.DeleteSet(context.Background(), 7, models.LocalID(1))
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

// TestClient_ListSets проверяет фильтры списка
func TestClient_ListSets(t *testing.T) {
	tests := []struct {
		name      string
		wantQuery string
		filter    models.SetFilter
	}{
		{name: "by session", filter: models.SetFilter{SessionID: 7}, wantQuery: "session_id=7"},
		{name: "by exercise", filter: models.SetFilter{ExerciseID: 42}, wantQuery: "exercise_id=42"},
		{name: "no filter", filter: models.SetFilter{}, wantQuery: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/sets", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)

				_ = json.NewEncoder(w).Encode(api.ListSetsResponse{Sets: []api.SetResponse{
					{ID: "2", SessionID: 7, ExerciseID: 42},
					{ID: "1", SessionID: 7, ExerciseID: 42},
				}})
			}))
			defer server.Close()

			client := NewClient(server.URL)
			sets, err := client.ListSets(context.Background(), tt.filter)

			require.NoError(t, err)
			require.Len(t, sets, 2)
			assert.Equal(t, models.RemoteID("2"), sets[0].ID)
			assert.Equal(t, models.RemoteID("1"), sets[1].ID)
		})
	}
}

// TestClient_Errors проверяет классификацию ошибок сервера
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		responseBody any
		wantFields   map[string]string
		wantKind     remote.Kind
		name         string
		statusCode   int
	}{
		{
			name:       "validation with fields",
			statusCode: http.StatusUnprocessableEntity,
			responseBody: api.ErrorResponse{
				Error:  "invalid set",
				Fields: map[string]string{"weight": "must not be negative"},
			},
			wantKind:   remote.KindValidation,
			wantFields: map[string]string{"weight": "must not be negative"},
		},
		{
			name:         "bad request",
			statusCode:   http.StatusBadRequest,
			responseBody: api.ErrorResponse{Error: "invalid JSON"},
			wantKind:     remote.KindValidation,
		},
		{
			name:         "not found",
			statusCode:   http.StatusNotFound,
			responseBody: api.ErrorResponse{Error: "set not found"},
			wantKind:     remote.KindNotFound,
		},
		{
			name:         "internal error",
			statusCode:   http.StatusInternalServerError,
			responseBody: "boom",
			wantKind:     remote.KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(tt.responseBody)
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.UpdateSet(context.Background(), 1, models.RemoteID("1"), models.SetUpdate{Reps: models.Int(1)})

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, remote.KindOf(err))
			assert.Equal(t, tt.wantFields, remote.FieldsOf(err))

			var re *remote.Error
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.statusCode, re.Status)
		})
	}
}

// TestClient_NetworkError проверяет недоступный сервер и отмену контекста
func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.ListSets(ctx, models.SetFilter{SessionID: 1})
	assert.ErrorIs(t, err, remote.ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	_, err = NewClient(url).ListSets(context.Background(), models.SetFilter{})
	assert.ErrorIs(t, err, remote.ErrNetwork)
}

// TestClient_MalformedResponse проверяет некорректный ответ сервера
func TestClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreateSet(context.Background(), 1, models.SetInput{ExerciseID: 1})
	assert.ErrorIs(t, err, remote.ErrServer)
}
