// Package create реализует HTTP-обработчик генерации повторяющейся серии тренировок.
//
// Серия разворачивается из правила повторения в отдельные тренировки,
// вставляемые атомарно. Первые тренировки серии привязываются к активному
// пакету клиента в пределах оставшихся кредитов.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/response"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	recurrenceservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/recurrence"
)

// Request — входные данные для генерации серии
type Request struct {
	ClientID      string  `json:"client_id" validate:"required,uuid"`
	StartDate     string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	DayOfWeek     int     `json:"day_of_week" validate:"min=0,max=6"`
	Time          string  `json:"time" validate:"required,datetime=15:04"`
	IntervalWeeks int     `json:"interval_weeks" validate:"required,min=1,max=52"`
	Count         int     `json:"count" validate:"required,min=1,max=104"`
	Location      *string `json:"location,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// Service описывает интерфейс бизнес-логики генерации серии.
type Service interface {
	Generate(ctx context.Context, trainerID uuid.UUID, req recurrenceservice.GenerateRequest) (*recurrenceservice.GenerateResult, error)
}

// Handler управляет HTTP-запросами на генерацию серий.
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
// @Summary Создать повторяющуюся серию
// @Description Генерирует серию тренировок по правилу повторения. Возвращает ID серии и созданные тренировки.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param request body Request true "Правило повторения"
// @Success 200 {object} map[string]any "Созданная серия"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/recurring [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recurring.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	trainerID, ok := middlewarectx.TrainerFromContext(r.Context())
	if !ok {
		log.Error("trainer id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	clientID, _ := uuid.Parse(req.ClientID)
	result, err := h.service.Generate(r.Context(), trainerID, recurrenceservice.GenerateRequest{
		ClientID:  clientID,
		StartDate: req.StartDate,
		Rule: models.RecurrenceRule{
			DayOfWeek:     req.DayOfWeek,
			Time:          req.Time,
			IntervalWeeks: req.IntervalWeeks,
		},
		Count:    req.Count,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrClientNotFound):
			log.Error("client not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("client not found"))
		case errors.Is(err, apperrors.ErrValidation):
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid recurrence rule"))
		default:
			log.Error("failed to generate recurring sessions", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create recurring sessions"))
		}
		return
	}

	log.Info("recurring series created",
		slog.Any("group_id", result.GroupID),
		slog.Int("count", len(result.SessionIDs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"group_id":          result.GroupID,
		"session_ids":       result.SessionIDs,
		"assigned_package":  result.AssignedPackage,
		"assigned_sessions": result.AssignedSessions,
	}))
}
