// Package feed реализует публичный HTTP-обработчик календарного фида iCalendar.
//
// Эндпоинт доступен без JWT: доступ контролируется непрозрачным токеном
// в URL. Частота запросов по каждому токену ограничена фиксированным окном;
// лимиты сообщаются заголовками X-RateLimit-*.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/response"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/ratelimit"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/sl"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

// Service описывает интерфейс бизнес-логики календарного фида.
type Service interface {
	ResolveToken(ctx context.Context, rawToken string) (uuid.UUID, error)
	BuildFeed(ctx context.Context, trainerID uuid.UUID, trainerName string) (string, error)
}

// TrainerProvider возвращает данные тренера для заголовка календаря.
type TrainerProvider interface {
	GetTrainerByID(ctx context.Context, id uuid.UUID) (*models.Trainer, error)
}

// Handler управляет HTTP-запросами календарного фида.
type Handler struct {
	log      *slog.Logger
	service  Service
	trainers TrainerProvider
	limiter  *ratelimit.FixedWindow
}

// New создает новый Handler с переданными логгером, сервисом и лимитером.
func New(log *slog.Logger, service Service, trainers TrainerProvider, limiter *ratelimit.FixedWindow) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		trainers: trainers,
		limiter:  limiter,
	}
}

// ServeHTTP godoc
// @Summary Календарный фид iCalendar
// @Description Возвращает фид тренировок тренера в формате text/calendar. Доступ по непрозрачному токену.
// @Tags Feed
// @Produce  plain
// @Param token path string true "Токен фида"
// @Success 200 {string} string "iCalendar фид"
// @Failure 404 {object} response.ErrorResponse "Неизвестный токен"
// @Failure 429 {object} response.ErrorResponse "Превышен лимит запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /ics/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := chi.URLParam(r, "token")

	decision := h.limiter.Allow(token)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))
	if !decision.Allowed {
		log.Error("rate limit exceeded")
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
		render.JSON(w, r, response.Error("too many requests"))
		return
	}

	trainerID, err := h.service.ResolveToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTrainerNotFound) {
			log.Error("unknown feed token")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
			return
		}
		log.Error("failed to resolve token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve token"))
		return
	}

	trainer, err := h.trainers.GetTrainerByID(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to load trainer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build feed"))
		return
	}

	feed, err := h.service.BuildFeed(r.Context(), trainerID, trainer.Name)
	if err != nil {
		log.Error("failed to build feed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build feed"))
		return
	}

	log.Info("feed served", slog.String("trainer_id", trainerID.String()))
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}
