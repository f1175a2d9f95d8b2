// Package status реализует HTTP-обработчик смены статуса тренировки.
//
// Переходы разрешены только из статуса scheduled. Перевод в completed
// дополнительно списывает кредит привязанного пакета; повторное завершение
// отвечает 200 без списания, отменённый или пропущенный статус терминален.
package status

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

// Request — входные данные для смены статуса
type Request struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled no_show"`
}

// Service описывает интерфейс бизнес-логики смены статуса тренировки.
type Service interface {
	Complete(ctx context.Context, trainerID, sessionID uuid.UUID) (*models.Session, *models.Package, error)
	SetStatus(ctx context.Context, trainerID, sessionID uuid.UUID, status string) (*models.Session, error)
}

// Handler управляет HTTP-запросами на смену статуса тренировок.
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
// @Summary Сменить статус тренировки
// @Description Переводит запланированную тренировку в completed, cancelled или no_show. Завершение списывает кредит пакета.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path string true "ID тренировки"
// @Param request body Request true "Новый статус"
// @Success 200 {object} map[string]any "Тренировка с новым статусом"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/status [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.status"
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

	var (
		sess *models.Session
		pkg  *models.Package
	)
	if req.Status == models.SessionStatusCompleted {
		sess, pkg, err = h.service.Complete(r.Context(), trainerID, sessionID)
	} else {
		sess, err = h.service.SetStatus(r.Context(), trainerID, sessionID, req.Status)
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			log.Error("session not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, apperrors.ErrInvalidTransition):
			log.Error("invalid status transition", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("only scheduled sessions can change status"))
		default:
			log.Error("failed to change status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not change session status"))
		}
		return
	}

	log.Info("session status changed", slog.Any("id", sessionID), slog.String("status", req.Status))
	data := map[string]any{"session": sess}
	if pkg != nil {
		data["package"] = pkg
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
