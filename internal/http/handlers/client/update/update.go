// Package update реализует HTTP-обработчик обновления карточки клиента.
package update

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

// Request — входные данные для обновления клиента
type Request struct {
	Name   string  `json:"name" validate:"required,min=2,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty"`
	Status string  `json:"status" validate:"required,oneof=active inactive archived"`
	Notes  *string `json:"notes,omitempty"`
}

// Service описывает интерфейс бизнес-логики обновления клиента.
type Service interface {
	Update(ctx context.Context, trainerID uuid.UUID, c models.Client) (*models.Client, error)
}

// Handler управляет HTTP-запросами на обновление клиентов.
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
// @Summary Обновить клиента
// @Description Обновляет карточку клиента текущего тренера.
// @Tags Clients
// @Accept  json
// @Produce  json
// @Param id path string true "ID клиента"
// @Param request body Request true "Новые данные клиента"
// @Success 200 {object} map[string]any "Обновленная карточка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
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

	client, err := h.service.Update(r.Context(), trainerID, models.Client{
		ID:     clientID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrClientNotFound) {
			log.Error("client not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("client not found"))
			return
		}
		log.Error("failed to update client", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update client"))
		return
	}

	log.Info("client updated", slog.Any("id", clientID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": client,
	}))
}
