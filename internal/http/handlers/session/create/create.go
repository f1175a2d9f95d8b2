// Package create реализует HTTP-обработчик создания одиночной тренировки.
//
// При наличии у клиента активного пакета с оставшимися кредитами тренировка
// привязывается к нему; кредит списывается только при завершении.
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
	sessionservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/session"
)

// Request — входные данные для создания тренировки
type Request struct {
	ClientID    string  `json:"client_id" validate:"required,uuid"`
	ScheduledAt string  `json:"scheduled_at" validate:"required"` // "2006-01-02T15:04" в поясе бизнеса
	Location    *string `json:"location,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Service описывает интерфейс бизнес-логики создания тренировки.
type Service interface {
	Create(ctx context.Context, trainerID uuid.UUID, req sessionservice.CreateRequest) (*models.Session, error)
}

// Handler управляет HTTP-запросами на создание тренировок.
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
// @Summary Создать тренировку
// @Description Создает одиночную тренировку клиента. Возвращает созданную запись.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные тренировки"
// @Success 200 {object} map[string]any "Созданная тренировка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.create"
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

	trainerID, ok := middlewarectx.TrainerFromContext(r.Context())
	if !ok {
		log.Error("trainer id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	clientID, _ := uuid.Parse(req.ClientID)
	sess, err := h.service.Create(r.Context(), trainerID, sessionservice.CreateRequest{
		ClientID:    clientID,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		Notes:       req.Notes,
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
			render.JSON(w, r, response.Error("invalid scheduled_at"))
		default:
			log.Error("failed to create session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create session"))
		}
		return
	}

	log.Info("session created", slog.Any("id", sess.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": sess,
	}))
}
