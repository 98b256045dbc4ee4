package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/liftlog/internal/server/handlers"
	"github.com/iudanet/liftlog/internal/server/middleware"
	"github.com/iudanet/liftlog/internal/server/storage"
)

// Storage объединяет то, что нужно маршрутам от хранилища
type Storage interface {
	storage.SetStorage
	handlers.Pinger
}

// RouterConfig описывает зависимости HTTP маршрутов
type RouterConfig struct {
	Logger   *slog.Logger
	Storage  Storage
	Registry *prometheus.Registry
	Limiter  *middleware.RateLimiter // ограничение записей, nil - без ограничения
	Version  string
}

// NewRouter собирает маршруты API:
//
//	POST   /api/v1/sessions/{session_id}/sets
//	PATCH  /api/v1/sessions/{session_id}/sets/{set_id}
//	DELETE /api/v1/sessions/{session_id}/sets/{set_id}
//	GET    /api/v1/sets?session_id=&exercise_id=
//	GET    /api/v1/health
//	GET    /metrics
func NewRouter(cfg RouterConfig) *mux.Router {
	sets := handlers.NewSetsHandler(cfg.Logger, cfg.Storage)
	health := handlers.NewHealthHandler(cfg.Logger, cfg.Storage, cfg.Version)

	r := mux.NewRouter()
	r.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingWithSkip(cfg.Logger, []string{"/api/v1/health", "/metrics"}),
		middleware.RecoveryMiddleware(cfg.Logger),
	)
	if cfg.Registry != nil {
		r.Use(middleware.NewMetrics(cfg.Registry).Middleware)
		r.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Methods(http.MethodGet).Path("/health").HandlerFunc(health.Health)
	api.Methods(http.MethodGet).Path("/sets").HandlerFunc(sets.List)

	writes := func(h http.HandlerFunc) http.Handler {
		if cfg.Limiter == nil {
			return h
		}
		return middleware.RateLimitMiddleware(cfg.Limiter, middleware.SessionKey, cfg.Logger)(h)
	}
	const (
		setsPath = "/sessions/{" + handlers.VarSessionID + "}/sets"
		setPath  = setsPath + "/{" + handlers.VarSetID + "}"
	)
	api.Methods(http.MethodPost).Path(setsPath).Handler(writes(sets.Create))
	api.Methods(http.MethodPatch).Path(setPath).Handler(writes(sets.Update))
	api.Methods(http.MethodDelete).Path(setPath).Handler(writes(sets.Delete))

	return r
}

// NewHTTPServer создает http.Server с таймаутами
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
