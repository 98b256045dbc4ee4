package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// RateLimiter ограничивает число запросов на ключ в пределах окна (fixed window)
type RateLimiter struct {
	buckets  map[string]*bucket
	now      func() time.Time
	cleanupC chan struct{}
	rate     int
	window   time.Duration
	mu       sync.RWMutex
	stopOnce sync.Once
}

// bucket хранит остаток запросов для одного ключа
type bucket struct {
	windowStart time.Time
	tokens      int
	mu          sync.Mutex
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов за window
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		now:      time.Now,
		rate:     rate,
		window:   window,
		cleanupC: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldBuckets()
		case <-rl.cleanupC:
			return
		}
	}
}

func (rl *RateLimiter) cleanupOldBuckets() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.windowStart) > rl.window*2 {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop останавливает cleanup goroutine. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow расходует один запрос ключа.
// Если лимит исчерпан, возвращает false и время до начала следующего окна.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{tokens: rl.rate, windowStart: rl.now()}
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	if now.Sub(b.windowStart) >= rl.window {
		b.tokens = rl.rate
		b.windowStart = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, b.windowStart.Add(rl.window).Sub(now)
}

// KeyFunc выбирает ключ ограничения для запроса
type KeyFunc func(r *http.Request) string

// ClientKey ограничивает по IP клиента
func ClientKey(r *http.Request) string {
	return getClientIP(r)
}

// SessionKey ограничивает по паре IP клиента и тренировки из пути
func SessionKey(r *http.Request) string {
	return getClientIP(r) + "/" + mux.Vars(r)["session_id"]
}

// RateLimitMiddleware создает middleware для ограничения частоты запросов.
// При превышении отвечает 429 с заголовком Retry-After.
func RateLimitMiddleware(limiter *RateLimiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)

			allowed, retryAfter := limiter.Allow(k)
			if !allowed {
				logger.Warn("Rate limit exceeded",
					"key", k,
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
				)

				seconds := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// первый адрес списка - реальный клиент
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
