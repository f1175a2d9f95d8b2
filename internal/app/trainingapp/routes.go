// Package trainingapp предоставляет маршруты для основного приложения.
package trainingapp

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/auth/login"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/auth/register"
	clientcreate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/client/create"
	clientlist "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/client/list"
	clientread "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/client/read"
	clientupdate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/client/update"
	exerciseattach "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/exercise/attach"
	exercisecreate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/exercise/create"
	exerciselist "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/exercise/list"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/feed"
	feedtokenget "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/feedtoken/get"
	feedtokenregenerate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/feedtoken/regenerate"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/health"
	inbodylist "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/inbody/list"
	inbodyocr "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/inbody/ocr"
	pkgcreate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/pkg/create"
	pkglist "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/pkg/list"
	pkgtogglepaid "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/pkg/togglepaid"
	pkgupdate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/pkg/update"
	recurringcreate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/recurring/create"
	sessionautocomplete "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/autocomplete"
	sessioncreate "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/create"
	sessionlist "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/list"
	sessionremove "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/remove"
	sessionremovefuture "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/removefuture"
	sessionreschedule "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/reschedule"
	sessionstatus "github.com/lukaskostka/janrichtertrainingapp/internal/http/handlers/session/status"
	"github.com/lukaskostka/janrichtertrainingapp/internal/http/middlewarectx"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/jwt"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/ratelimit"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	authservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/auth"
	calendarservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/calendar"
	clientservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/client"
	exerciseservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/exercise"
	inbodyservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/inbody"
	ledgerservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/ledger"
	recurrenceservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/recurrence"
	sessionservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/session"
	sweeperservice "github.com/lukaskostka/janrichtertrainingapp/internal/services/sweeper"
	"github.com/lukaskostka/janrichtertrainingapp/internal/storage/repository"
)

// Лимит запросов календарного фида на один токен.
const (
	feedRateLimit  = 30
	feedRatePeriod = time.Minute
)

// Services собирает сервисы, которыми пользуются обработчики.
type Services struct {
	Auth       *authservice.AuthService
	Clients    *clientservice.ClientService
	Ledger     *ledgerservice.LedgerService
	Sessions   *sessionservice.SessionService
	Recurrence *recurrenceservice.RecurrenceService
	Sweeper    *sweeperservice.SweeperService
	Calendar   *calendarservice.CalendarService
	Exercises  *exerciseservice.ExerciseService
	InBody     *inbodyservice.InBodyService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker jwt.Maker, tz *timezone.Adapter, db *repository.Storage, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	feedLimiter := ratelimit.NewFixedWindow(feedRateLimit, feedRatePeriod)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/clients", clientcreate.New(logger, s.Clients).ServeHTTP)
			r.Get("/clients", clientlist.New(logger, s.Clients).ServeHTTP)
			r.Get("/clients/{id}", clientread.New(logger, s.Clients).ServeHTTP)
			r.Put("/clients/{id}", clientupdate.New(logger, s.Clients).ServeHTTP)

			r.Post("/packages", pkgcreate.New(logger, s.Ledger).ServeHTTP)
			r.Get("/clients/{clientID}/packages", pkglist.New(logger, s.Ledger).ServeHTTP)
			r.Put("/packages/{id}", pkgupdate.New(logger, s.Ledger).ServeHTTP)
			r.Post("/packages/{id}/toggle-paid", pkgtogglepaid.New(logger, s.Ledger).ServeHTTP)

			r.Post("/sessions", sessioncreate.New(logger, s.Sessions).ServeHTTP)
			r.Get("/sessions", sessionlist.New(logger, s.Sessions, tz).ServeHTTP)
			r.Post("/sessions/recurring", recurringcreate.New(logger, s.Recurrence).ServeHTTP)
			r.Post("/sessions/auto-complete", sessionautocomplete.New(logger, s.Sweeper).ServeHTTP)
			r.Post("/sessions/{id}/reschedule", sessionreschedule.New(logger, s.Sessions).ServeHTTP)
			r.Post("/sessions/{id}/status", sessionstatus.New(logger, s.Sessions).ServeHTTP)
			r.Delete("/sessions/{id}", sessionremove.New(logger, s.Sessions).ServeHTTP)
			r.Delete("/sessions/{id}/future", sessionremovefuture.New(logger, s.Sessions).ServeHTTP)
			r.Put("/sessions/{id}/exercises", exerciseattach.New(logger, s.Exercises).ServeHTTP)

			r.Post("/exercises", exercisecreate.New(logger, s.Exercises).ServeHTTP)
			r.Get("/exercises", exerciselist.New(logger, s.Exercises).ServeHTTP)

			r.Get("/feed/token", feedtokenget.New(logger, s.Calendar).ServeHTTP)
			r.Post("/feed/token/regenerate", feedtokenregenerate.New(logger, s.Calendar).ServeHTTP)

			r.Post("/clients/{clientID}/inbody/ocr", inbodyocr.New(logger, s.InBody).ServeHTTP)
			r.Get("/clients/{clientID}/inbody", inbodylist.New(logger, s.InBody).ServeHTTP)
		})
	})

	// Публичный календарный фид, доступ по токену
	r.Get("/ics/{token}", feed.New(logger, s.Calendar, db, feedLimiter).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
