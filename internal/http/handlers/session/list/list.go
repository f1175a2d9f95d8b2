// Package list реализует HTTP-обработчик списка тренировок тренера.
//
// Поддерживает фильтры query-параметрами: client_id, status, from, to
// (даты в формате 2006-01-02, трактуются в поясе бизнеса).
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
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	"github.com/lukaskostka/janrichtertrainingapp/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики списка тренировок.
type Service interface {
	List(ctx context.Context, trainerID uuid.UUID, filter repository.SessionFilter) ([]*models.Session, error)
}

// Handler управляет HTTP-запросами на получение списка тренировок.
type Handler struct {
	log     *slog.Logger
	service Service
	tz      *timezone.Adapter
}

// New создает новый Handler с переданными логгером, сервисом и адаптером пояса.
func New(log *slog.Logger, service Service, tz *timezone.Adapter) *Handler {
	return &Handler{log: log, service: service, tz: tz}
}

// ServeHTTP godoc
// @Summary Список тренировок
// @Description Возвращает тренировки текущего тренера с опциональными фильтрами.
// @Tags Sessions
// @Produce  json
// @Param client_id query string false "Фильтр по клиенту"
// @Param status query string false "Фильтр по статусу" Enums(scheduled, completed, cancelled, no_show)
// @Param from query string false "Нижняя граница даты (2006-01-02)"
// @Param to query string false "Верхняя граница даты (2006-01-02)"
// @Success 200 {object} map[string]any "Список тренировок"
// @Failure 400 {object} response.ErrorResponse "Некорректные фильтры"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.list"
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

	var filter repository.SessionFilter
	q := r.URL.Query()

	if raw := q.Get("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			log.Error("failed to parse client_id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid client_id"))
			return
		}
		filter.ClientID = &clientID
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = &raw
	}
	if raw := q.Get("from"); raw != "" {
		from, err := h.tz.ParseCivilDate(raw)
		if err != nil {
			log.Error("failed to parse from", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid from date"))
			return
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := h.tz.ParseCivilDate(raw)
		if err != nil {
			log.Error("failed to parse to", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid to date"))
			return
		}
		filter.To = &to
	}

	sessions, err := h.service.List(r.Context(), trainerID, filter)
	if err != nil {
		log.Error("failed to list sessions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list sessions"))
		return
	}

	log.Info("sessions listed", slog.Int("count", len(sessions)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"sessions": sessions,
	}))
}
