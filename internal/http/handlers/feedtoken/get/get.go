// Package get реализует HTTP-обработчик выдачи текущего токена календарного фида.
package get

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
)

// Service описывает интерфейс бизнес-логики токена фида.
type Service interface {
	Token(ctx context.Context, trainerID uuid.UUID) (uuid.UUID, error)
}

// Handler управляет HTTP-запросами на получение токена фида.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Текущий токен фида
// @Description Возвращает токен календарного фида текущего тренера.
// @Tags Feed
// @Produce  json
// @Success 200 {object} map[string]any "Токен фида"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /feed/token [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feedtoken.get"
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

	token, err := h.service.Token(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to get feed token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get feed token"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
