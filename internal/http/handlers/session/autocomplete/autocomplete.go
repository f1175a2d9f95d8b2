// Package autocomplete реализует HTTP-обработчик ручного запуска
// авто-завершения просроченных тренировок.
//
// Повторный запуск в течение минуты возвращает пустой результат
// (кулдаун), это не ошибка.
package autocomplete

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
	sweeperservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/sweeper"
)

// Service описывает интерфейс бизнес-логики авто-завершения.
type Service interface {
	Run(ctx context.Context, trainerID uuid.UUID) (*sweeperservice.Result, error)
}

// Handler управляет HTTP-запросами на запуск авто-завершения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Авто-завершить просроченные тренировки
// @Description Завершает запланированные тренировки, начавшиеся более часа назад, со списанием кредитов.
// @Tags Sessions
// @Produce  json
// @Success 200 {object} map[string]any "Итоги прохода"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions/auto-complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.autocomplete"
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

	result, err := h.service.Run(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to run autocomplete", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not autocomplete sessions"))
		return
	}

	log.Info("autocomplete finished",
		slog.Int("completed", result.Completed),
		slog.Int("failed", result.Failed),
		slog.Bool("skipped", result.Skipped))
	render.JSON(w, r, response.StatusOKWithData(result))
}
