package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.Methods(http.MethodDelete).Path("/api/v1/sessions/{session_id}/sets/{set_id}").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["set_id"] == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/api/v1/sessions/1/sets/2", "/api/v1/sessions/1/sets/3", "/api/v1/sessions/1/sets/404"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))
	}

	const route = "/api/v1/sessions/{session_id}/sets/{set_id}"
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(route, http.MethodDelete, "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(route, http.MethodDelete, "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}
