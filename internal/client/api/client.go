package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
	"github.com/iudanet/liftlog/pkg/api"
)

// DefaultTimeout ограничивает время одного запроса к серверу
const DefaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с сервером.
// Реализует remote.Client: каждая ошибка возвращается как *remote.Error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
}

// Option настраивает Client
type Option func(*Client)

// WithClientID передает идентификатор установки клиента в каждом запросе
func WithClientID(id string) Option {
	return func(c *Client) {
		c.clientID = id
	}
}

// WithTimeout меняет таймаут одного запроса
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

var _ remote.Client = (*Client)(nil)

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSet создает подход в тренировке
func (c *Client) CreateSet(ctx context.Context, sessionID int64, in models.SetInput) (models.Set, error) {
	req := api.CreateSetRequest{
		Weight:     in.Weight,
		Reps:       in.Reps,
		Note:       in.Note,
		ExerciseID: in.ExerciseID,
	}
	var resp api.SetResponse
	path := fmt.Sprintf("/api/v1/sessions/%d/sets", sessionID)
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return models.Set{}, err
	}
	return setFromResponse(resp)
}

// UpdateSet частично обновляет подход
func (c *Client) UpdateSet(ctx context.Context, sessionID int64, id models.SetID, u models.SetUpdate) (models.Set, error) {
	path, err := setPath(sessionID, id)
	if err != nil {
		return models.Set{}, err
	}
	req := api.UpdateSetRequest{
		Weight: u.Weight,
		Reps:   u.Reps,
		Note:   u.Note,
	}
	var resp api.SetResponse
	if err := c.doRequest(ctx, http.MethodPatch, path, req, &resp); err != nil {
		return models.Set{}, err
	}
	return setFromResponse(resp)
}

// DeleteSet удаляет подход
func (c *Client) DeleteSet(ctx context.Context, sessionID int64, id models.SetID) error {
	path, err := setPath(sessionID, id)
	if err != nil {
		return err
	}
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}

// ListSets возвращает подходы по фильтру в порядке отображения
func (c *Client) ListSets(ctx context.Context, filter models.SetFilter) ([]models.Set, error) {
	q := url.Values{}
	if filter.SessionID != 0 {
		q.Set("session_id", strconv.FormatInt(filter.SessionID, 10))
	}
	if filter.ExerciseID != 0 {
		q.Set("exercise_id", strconv.FormatInt(filter.ExerciseID, 10))
	}
	path := "/api/v1/sets"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.ListSetsResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	sets := make([]models.Set, 0, len(resp.Sets))
	for _, r := range resp.Sets {
		s, err := setFromResponse(r)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}

// doRequest выполняет HTTP запрос и классифицирует ошибки
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return remote.NetworkError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return remote.NetworkError(fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(api.RequestIDHeader, uuid.NewString())
	if c.clientID != "" {
		req.Header.Set(api.ClientIDHeader, c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return remote.NetworkError(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.NetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			e := remote.ServerError(resp.StatusCode, "malformed response")
			e.Err = err
			return e
		}
	}

	return nil
}

// errorFromResponse переводит статус ответа в вид ошибки
func errorFromResponse(status int, body []byte) *remote.Error {
	var errResp api.ErrorResponse
	message := string(bytes.TrimSpace(body))
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.Error
		if errResp.Message != "" {
			message = errResp.Message
		}
	}

	var e *remote.Error
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		e = remote.ValidationError(message, errResp.Fields)
	case status == http.StatusNotFound, status == http.StatusGone:
		e = remote.NotFoundError(message)
	default:
		e = remote.ServerError(status, message)
	}
	e.Status = status
	return e
}

func setPath(sessionID int64, id models.SetID) (string, error) {
	if id.IsPlaceholder() || id.IsZero() {
		// плейсхолдер не существует на сервере
		return "", remote.NotFoundError(fmt.Sprintf("set %s has no server id", id))
	}
	return fmt.Sprintf("/api/v1/sessions/%d/sets/%s", sessionID, url.PathEscape(id.Value)), nil
}

func setFromResponse(r api.SetResponse) (models.Set, error) {
	if r.ID == "" {
		return models.Set{}, remote.ServerError(0, "response without set id")
	}
	return models.Set{
		ID:         models.RemoteID(r.ID),
		SessionID:  r.SessionID,
		ExerciseID: r.ExerciseID,
		Weight:     r.Weight,
		Reps:       r.Reps,
		Note:       r.Note,
		CreatedAt:  r.CreatedAt,
	}, nil
}
