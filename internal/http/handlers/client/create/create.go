// Package create реализует HTTP-обработчик создания клиента тренера.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/response"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Request — входные данные для создания клиента
type Request struct {
	Name   string  `json:"name" validate:"required,min=2,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty"`
	Status string  `json:"status,omitempty" validate:"omitempty,oneof=active inactive archived"`
	Notes  *string `json:"notes,omitempty"`
}

// Service описывает интерфейс бизнес-логики создания клиента.
type Service interface {
	Create(ctx context.Context, trainerID uuid.UUID, c models.Client) (uuid.UUID, error)
}

// Handler управляет HTTP-запросами на создание клиентов.
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
// @Summary Создать клиента
// @Description Создает нового клиента текущего тренера. Возвращает ID созданной записи.
// @Tags Clients
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные клиента"
// @Success 200 {object} map[string]any "Успешное создание клиента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.create"
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

	id, err := h.service.Create(r.Context(), trainerID, models.Client{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		log.Error("failed to create client", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create client"))
		return
	}

	log.Info("client created", slog.Any("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client_id": id,
	}))
}
