// Package ocr реализует HTTP-обработчик распознавания протокола InBody.
//
// Принимает снимок листа измерений как multipart-поле image, отправляет его
// во внешний OCR-сервис и сохраняет распознанное измерение клиенту.
// Распознанные значения возвращаются тренеру для ручной проверки.
package ocr

import (
	"context"
	"errors"
	"io"
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

// maxImageSize ограничивает размер загружаемого снимка.
const maxImageSize = 10 << 20

// Service описывает интерфейс бизнес-логики распознавания измерений.
type Service interface {
	RecognizeAndSave(ctx context.Context, trainerID, clientID uuid.UUID, image []byte, mimeType string) (*models.InBodyRecord, error)
}

// Handler управляет HTTP-запросами на распознавание протоколов InBody.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Распознать протокол InBody
// @Description Распознает снимок листа InBody и сохраняет измерение клиенту.
// @Tags InBody
// @Accept  mpfd
// @Produce  json
// @Param clientID path string true "ID клиента"
// @Param image formData file true "Снимок протокола InBody"
// @Success 200 {object} map[string]any "Сохранённое измерение"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Тренер не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или OCR-сервиса"
// @Router /clients/{clientID}/inbody/ocr [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.inbody.ocr"
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

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("failed to read image from form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing image file"))
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read image body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read image"))
		return
	}
	mimeType := header.Header.Get("Content-Type")
	log.Info("image received", slog.Int("size", len(image)), slog.String("mime_type", mimeType))

	record, err := h.service.RecognizeAndSave(r.Context(), trainerID, clientID, image, mimeType)
	if err != nil {
		if errors.Is(err, apperrors.ErrClientNotFound) {
			log.Error("client not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("client not found"))
			return
		}
		log.Error("failed to recognize inbody sheet", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not recognize inbody sheet"))
		return
	}

	log.Info("inbody record saved", slog.Any("record_id", record.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"record": record,
	}))
}
