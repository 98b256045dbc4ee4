package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iudanet/liftlog/internal/models"
	"github.com/iudanet/liftlog/internal/server/storage"
	"github.com/iudanet/liftlog/internal/validation"
	"github.com/iudanet/liftlog/pkg/api"
)

// Path variables of the sets routes.
const (
	VarSessionID = "session_id"
	VarSetID     = "set_id"
)

// maxBodySize ограничивает размер тела запроса
const maxBodySize = 64 << 10

// SetsHandler обрабатывает CRUD запросы для подходов тренировки
type SetsHandler struct {
	logger  *slog.Logger
	storage storage.SetStorage
}

// NewSetsHandler создает новый handler для подходов
func NewSetsHandler(logger *slog.Logger, setStorage storage.SetStorage) *SetsHandler {
	return &SetsHandler{
		logger:  logger,
		storage: setStorage,
	}
}

// Create обрабатывает POST /api/v1/sessions/{session_id}/sets
func (h *SetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req api.CreateSetRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	in := models.SetInput{
		ExerciseID: req.ExerciseID,
		Weight:     req.Weight,
		Reps:       req.Reps,
		Note:       validation.NormalizeNote(req.Note),
	}
	if h.rejectInvalid(w, r, validation.ValidateSetInput(in)) {
		return
	}

	set := &models.Set{
		SessionID:  sessionID,
		ExerciseID: in.ExerciseID,
		Weight:     in.Weight,
		Reps:       in.Reps,
		Note:       in.Note,
	}
	if err := h.storage.CreateSet(ctx, set); err != nil {
		h.logger.ErrorContext(ctx, "failed to create set", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "set created",
		slog.Int64("session_id", sessionID),
		slog.String("set_id", set.ID.String()))

	sendJSON(h.logger, w, setResponse(*set), http.StatusCreated)
}

// Update обрабатывает PATCH /api/v1/sessions/{session_id}/sets/{set_id}
// Отсутствующие в теле поля не изменяются
func (h *SetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	id, ok := h.setID(w, r)
	if !ok {
		return
	}

	var req api.UpdateSetRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	u := models.SetUpdate{Weight: req.Weight, Reps: req.Reps}
	if req.Note != nil {
		note := validation.NormalizeNote(*req.Note)
		u.Note = &note
	}
	if h.rejectInvalid(w, r, validation.ValidateSetUpdate(u)) {
		return
	}

	set, err := h.storage.UpdateSet(ctx, sessionID, id, u)
	if errors.Is(err, storage.ErrSetNotFound) {
		sendError(h.logger, w, "set not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update set", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, setResponse(*set), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/sessions/{session_id}/sets/{set_id}
func (h *SetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	id, ok := h.setID(w, r)
	if !ok {
		return
	}

	err := h.storage.DeleteSet(ctx, sessionID, id)
	if errors.Is(err, storage.ErrSetNotFound) {
		sendError(h.logger, w, "set not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete set", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "set deleted",
		slog.Int64("session_id", sessionID),
		slog.Int64("set_id", id))

	w.WriteHeader(http.StatusNoContent)
}

// List обрабатывает GET /api/v1/sets?session_id=&exercise_id=
// Подходы возвращаются от новых к старым
func (h *SetsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.SetFilter
	for name, dst := range map[string]*int64{
		"session_id":  &filter.SessionID,
		"exercise_id": &filter.ExerciseID,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			sendError(h.logger, w, "invalid "+name, http.StatusBadRequest)
			return
		}
		*dst = v
	}

	sets, err := h.storage.ListSets(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sets", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.ListSetsResponse{Sets: make([]api.SetResponse, 0, len(sets))}
	for _, s := range sets {
		resp.Sets = append(resp.Sets, setResponse(s))
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

func (h *SetsHandler) sessionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)[VarSessionID]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		sendError(h.logger, w, "invalid session id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// setID разбирает идентификатор подхода; нечисловой id не может существовать
func (h *SetsHandler) setID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := storage.ParseSetID(mux.Vars(r)[VarSetID])
	if err != nil {
		h.logger.WarnContext(r.Context(), "bad set id", slog.Any("error", err))
		sendError(h.logger, w, "set not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// rejectInvalid отвечает 422, если err содержит ошибки валидации
func (h *SetsHandler) rejectInvalid(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		h.logger.InfoContext(r.Context(), "set rejected", slog.Any("fields", map[string]string(fe)))
		sendFieldErrors(h.logger, w, fe)
		return true
	}
	sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// setResponse конвертирует models.Set в DTO ответа
func setResponse(s models.Set) api.SetResponse {
	return api.SetResponse{
		ID:         s.ID.String(),
		SessionID:  s.SessionID,
		ExerciseID: s.ExerciseID,
		Weight:     s.Weight,
		Reps:       s.Reps,
		Note:       s.Note,
		CreatedAt:  s.CreatedAt,
	}
}
