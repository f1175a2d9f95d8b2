// Package update реализует HTTP-обработчик обновления пакета тренировок.
//
// Все поля запроса необязательны. Изменение счётчиков пересчитывает статус
// пакета: сокращение total до уже израсходованного числа кредитов завершает
// пакет, расширение завершённого возвращает его в active. Истёкший пакет
// можно править и вернуть в работу.
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
	ledgerservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/ledger"
)

// Request — входные данные для обновления пакета
type Request struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	TotalSessions *int     `json:"total_sessions,omitempty" validate:"omitempty,min=1,max=200"`
	UsedSessions  *int     `json:"used_sessions,omitempty" validate:"omitempty,min=0"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Status        *string  `json:"status,omitempty" validate:"omitempty,oneof=active completed expired"`
}

// Service описывает интерфейс бизнес-логики обновления пакета.
type Service interface {
	Update(ctx context.Context, trainerID, packageID uuid.UUID, req ledgerservice.UpdateRequest) (*models.Package, error)
}

// Handler управляет HTTP-запросами на обновление пакетов.
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
// @Summary Обновить пакет тренировок
// @Description Частично обновляет название, счётчики, цену или статус пакета.
// @Tags Packages
// @Accept  json
// @Produce  json
// @Param id path string true "ID пакета"
// @Param request body Request true "Новые данные пакета"
// @Success 200 {object} map[string]any "Обновленный пакет"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пакет не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /packages/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pkg.update"
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

	pkg, err := h.service.Update(r.Context(), trainerID, packageID, ledgerservice.UpdateRequest{
		Name:          req.Name,
		TotalSessions: req.TotalSessions,
		UsedSessions:  req.UsedSessions,
		Price:         req.Price,
		Status:        req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPackageNotFound):
			log.Error("package not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("package not found"))
		case errors.Is(err, apperrors.ErrValidation):
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid package update"))
		default:
			log.Error("failed to update package", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update package"))
		}
		return
	}

	log.Info("package updated", slog.Any("id", packageID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"package": pkg,
	}))
}
