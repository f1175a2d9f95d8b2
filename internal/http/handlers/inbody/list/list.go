// Package list реализует HTTP-обработчик истории измерений InBody клиента.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/response"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Service описывает интерфейс бизнес-логики истории измерений.
type Service interface {
	List(ctx context.Context, trainerID, clientID uuid.UUID) ([]*models.InBodyRecord, error)
}

// Handler управляет HTTP-запросами на получение истории измерений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История измерений InBody
// @Description Возвращает измерения клиента, свежие первыми.
// @Tags InBody
// @Produce  json
// @Param clientID path string true "ID клиента"
// @Success 200 {object} map[string]any "История измерений"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{clientID}/inbody [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inbody.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clientID, err := uuid.Parse(chi.URLParam(r, "clientID"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	trainerID, ok := middlewarectx.TrainerFromContext(r.Context())
	if !ok {
		log.Error("trainer id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	records, err := h.service.List(r.Context(), trainerID, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrClientNotFound) {
			log.Error("client not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("client not found"))
			return
		}
		log.Error("failed to list inbody records", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list inbody records"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"records": records,
	}))
}
