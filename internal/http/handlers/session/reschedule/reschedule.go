// Package reschedule реализует HTTP-обработчик переноса тренировки.
//
// Переносить можно только запланированную тренировку; попытка переноса
// завершённой или отменённой возвращает HTTP 409 Conflict.
package reschedule

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/response"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Request — входные данные для переноса тренировки
type Request struct {
	ScheduledAt string  `json:"scheduled_at" validate:"required"` // "2006-01-02T15:04" в поясе бизнеса
	Location    *string `json:"location,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Service описывает интерфейс бизнес-логики переноса тренировки.
type Service interface {
	Reschedule(ctx context.Context, trainerID, sessionID uuid.UUID, scheduledAt string, location, notes *string) (*models.Session, error)
}

// Handler управляет HTTP-запросами на перенос тренировок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Перенести тренировку
// @Description Переносит запланированную тренировку на новое время.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path string true "ID тренировки"
// @Param request body Request true "Новое время"
// @Success 200 {object} map[string]any "Обновленная тренировка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 409 {object} response.ErrorResponse "Тренировка не в статусе scheduled"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/reschedule [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.reschedule"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	trainerID, ok := middlewarectx.TrainerFromContext(r.Context())
	if !ok {
		log.Error("trainer id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sess, err := h.service.Reschedule(r.Context(), trainerID, sessionID, req.ScheduledAt, req.Location, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			log.Error("session not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, apperrors.ErrInvalidTransition):
			log.Error("session is not scheduled", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("only scheduled sessions can be rescheduled"))
		case errors.Is(err, apperrors.ErrValidation):
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid scheduled_at"))
		default:
			log.Error("failed to reschedule session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not reschedule session"))
		}
		return
	}

	log.Info("session rescheduled", slog.Any("id", sessionID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": sess,
	}))
}
