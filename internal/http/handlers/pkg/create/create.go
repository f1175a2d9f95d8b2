// Package create реализует HTTP-обработчик создания пакета тренировок.
//
// У клиента в любой момент может быть не более одного активного пакета;
// нарушение этого правила возвращается как HTTP 409 Conflict.
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
)

// Request — входные данные для создания пакета
type Request struct {
	ClientID      string   `json:"client_id" validate:"required,uuid"`
	Name          string   `json:"name" validate:"required,min=1,max=100"`
	TotalSessions int      `json:"total_sessions" validate:"required,min=1,max=200"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
}

// Service описывает интерфейс бизнес-логики создания пакета.
type Service interface {
	Create(ctx context.Context, trainerID, clientID uuid.UUID, name string, totalSessions int, price *float64) (uuid.UUID, error)
}

// Handler управляет HTTP-запросами на создание пакетов.
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
// @Summary Создать пакет тренировок
// @Description Создает пакет тренировок для клиента. Возвращает ID созданного пакета.
// @Tags Packages
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пакета"
// @Success 200 {object} map[string]any "Успешное создание пакета"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "У клиента уже есть активный пакет"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /packages [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pkg.create"
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
	id, err := h.service.Create(r.Context(), trainerID, clientID, req.Name, req.TotalSessions, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrClientNotFound):
			log.Error("client not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("client not found"))
		case errors.Is(err, apperrors.ErrActivePackageExists):
			log.Error("active package already exists", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("client already has an active package"))
		case errors.Is(err, apperrors.ErrValidation):
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid package parameters"))
		default:
			log.Error("failed to create package", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create package"))
		}
		return
	}

	log.Info("package created", slog.Any("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"package_id": id,
	}))
}
