// Package attach реализует HTTP-обработчик привязки плана упражнений к тренировке.
//
// Запрос заменяет весь план тренировки: порядок позиций определяется порядком
// элементов массива, соседние позиции с одинаковым superset_group образуют
// суперсет в календарном фиде.
package attach

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

// Item одна позиция плана тренировки.
type Item struct {
	ExerciseID    *string              `json:"exercise_id,omitempty" validate:"omitempty,uuid"`
	ExerciseName  string               `json:"exercise_name,omitempty"`
	Sets          []models.ExerciseSet `json:"sets,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	SupersetGroup *int                 `json:"superset_group,omitempty"`
}

// Request — входные данные для привязки плана
type Request struct {
	Items []Item `json:"items" validate:"required,dive"`
}

// Service описывает интерфейс бизнес-логики плана тренировки.
type Service interface {
	AttachPlan(ctx context.Context, trainerID, sessionID uuid.UUID, items []models.SessionExercise) ([]*models.SessionExercise, error)
}

// Handler управляет HTTP-запросами на привязку плана упражнений.
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
// @Summary Привязать план упражнений
// @Description Заменяет план тренировки переданным набором упражнений с подходами.
// @Tags Exercises
// @Accept  json
// @Produce  json
// @Param id path string true "ID тренировки"
// @Param request body Request true "План тренировки"
// @Success 200 {object} map[string]any "Сохранённый план"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/exercises [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exercise.attach"
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

	items := make([]models.SessionExercise, 0, len(req.Items))
	for _, it := range req.Items {
		item := models.SessionExercise{
			ExerciseName:  it.ExerciseName,
			Sets:          it.Sets,
			Notes:         it.Notes,
			SupersetGroup: it.SupersetGroup,
		}
		if it.ExerciseID != nil {
			exerciseID, _ := uuid.Parse(*it.ExerciseID)
			item.ExerciseID = &exerciseID
		}
		items = append(items, item)
	}

	plan, err := h.service.AttachPlan(r.Context(), trainerID, sessionID, items)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			log.Error("session not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, apperrors.ErrValidation):
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("every item needs exercise_id or exercise_name"))
		default:
			log.Error("failed to attach plan", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not attach exercise plan"))
		}
		return
	}

	log.Info("plan attached", slog.Any("session_id", sessionID), slog.Int("items", len(plan)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"exercises": plan,
	}))
}
