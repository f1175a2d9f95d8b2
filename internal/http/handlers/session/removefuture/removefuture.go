// Package removefuture реализует HTTP-обработчик удаления будущих
// тренировок повторяющейся серии.
//
// Удаляются только запланированные тренировки серии начиная с указанной;
// завершённые и отменённые остаются нетронутыми, кредиты не возвращаются.
package removefuture

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
)

// Service описывает интерфейс бизнес-логики удаления будущих тренировок серии.
type Service interface {
	DeleteFuture(ctx context.Context, trainerID, sessionID uuid.UUID) (int64, error)
}

// Handler управляет HTTP-запросами на удаление будущих тренировок серии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить будущие тренировки серии
// @Description Удаляет запланированные тренировки повторяющейся серии начиная с указанной.
// @Tags Sessions
// @Produce  json
// @Param id path string true "ID тренировки серии"
// @Success 200 {object} map[string]any "Количество удалённых тренировок"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или тренировка вне серии"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/{id}/future [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.removefuture"
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

	trainerID, ok := middlewarectx.TrainerFromContext(r.Context())
	if !ok {
		log.Error("trainer id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	deleted, err := h.service.DeleteFuture(r.Context(), trainerID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			log.Error("session not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, apperrors.ErrValidation):
			log.Error("session is not part of a recurring group", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("session is not part of a recurring group"))
		default:
			log.Error("failed to delete future sessions", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not delete future sessions"))
		}
		return
	}

	log.Info("future sessions deleted", slog.Any("id", sessionID), slog.Int64("deleted", deleted))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_count": deleted,
	}))
}
