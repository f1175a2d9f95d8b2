// Package list реализует HTTP-обработчик списка клиентов тренера.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/response"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Service описывает интерфейс бизнес-логики списка клиентов.
type Service interface {
	List(ctx context.Context, trainerID uuid.UUID) ([]*models.Client, error)
}

// Handler управляет HTTP-запросами на получение списка клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список клиентов
// @Description Возвращает всех клиентов текущего тренера, отсортированных по имени.
// @Tags Clients
// @Produce  json
// @Success 200 {object} map[string]any "Список клиентов"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	trainerID, ok := middlewarectx.TrainerFromContext(r.Context())
	if !ok {
		log.Error("trainer id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	clients, err := h.service.List(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to list clients", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list clients"))
		return
	}

	log.Info("clients listed", slog.Int("count", len(clients)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"clients": clients,
	}))
}
