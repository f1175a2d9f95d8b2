// Package togglepaid реализует HTTP-обработчик переключения отметки оплаты пакета.
package togglepaid

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

// Service описывает интерфейс бизнес-логики отметки оплаты.
type Service interface {
	TogglePaid(ctx context.Context, trainerID, packageID uuid.UUID) (*models.Package, error)
}

// Handler управляет HTTP-запросами на переключение оплаты пакета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Переключить отметку оплаты
// @Description Помечает пакет оплаченным либо снимает отметку оплаты.
// @Tags Packages
// @Produce  json
// @Param id path string true "ID пакета"
// @Success 200 {object} map[string]any "Пакет с новой отметкой оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пакет не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /packages/{id}/toggle-paid [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pkg.togglepaid"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	packageID, err := uuid.Parse(chi.URLParam(r, "id"))
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

	pkg, err := h.service.TogglePaid(r.Context(), trainerID, packageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPackageNotFound) {
			log.Error("package not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("package not found"))
			return
		}
		log.Error("failed to toggle paid", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not toggle paid"))
		return
	}

	log.Info("package paid toggled", slog.Any("id", packageID), slog.Bool("paid", pkg.Paid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"package": pkg,
	}))
}
