package api

import "time"

const (
	// RequestIDHeader несет идентификатор запроса клиента
	RequestIDHeader = "X-Request-ID"
	// ClientIDHeader несет идентификатор установки клиента
	ClientIDHeader = "X-Client-ID"
)

// CreateSetRequest представляет запрос на создание подхода
type CreateSetRequest struct {
	Weight     *float64 `json:"weight"`         // рабочий вес, null если не введен
	Reps       *int     `json:"reps"`           // повторения, null если не введены
	Note       string   `json:"note,omitempty"` // заметка
	ExerciseID int64    `json:"exercise_id"`    // упражнение
}

// UpdateSetRequest представляет частичное обновление подхода.
// Отсутствующие поля не изменяются.
type UpdateSetRequest struct {
	Weight *float64 `json:"weight,omitempty"`
	Reps   *int     `json:"reps,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

// SetResponse представляет подход в ответе сервера
type SetResponse struct {
	CreatedAt  time.Time `json:"created_at"`
	Weight     *float64  `json:"weight"`
	Reps       *int      `json:"reps"`
	ID         string    `json:"id"`
	Note       string    `json:"note,omitempty"`
	SessionID  int64     `json:"session_id"`
	ExerciseID int64     `json:"exercise_id"`
}

// ListSetsResponse представляет список подходов в порядке отображения
type ListSetsResponse struct {
	Sets []SetResponse `json:"sets"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Fields  map[string]string `json:"fields,omitempty"`  // ошибки валидации по полям
	Error   string            `json:"error"`             // описание ошибки
	Message string            `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
