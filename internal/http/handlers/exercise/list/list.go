// Package list реализует HTTP-обработчик списка упражнений каталога тренера.
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

// Service описывает интерфейс бизнес-логики списка упражнений.
type Service interface {
	List(ctx context.Context, trainerID uuid.UUID) ([]*models.Exercise, error)
}

// Handler управляет HTTP-запросами на получение каталога упражнений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог упражнений
// @Description Возвращает упражнения каталога текущего тренера.
// @Tags Exercises
// @Produce  json
// @Success 200 {object} map[string]any "Список упражнений"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /exercises [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exercise.list"
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

	exercises, err := h.service.List(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to list exercises", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list exercises"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"exercises": exercises,
	}))
}
