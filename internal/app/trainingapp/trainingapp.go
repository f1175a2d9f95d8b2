// Package trainingapp собирает основное HTTP-приложение тренера:
// хранилище, кеш, сервисы и маршруты.
package trainingapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/lukaskostka/janrichtertrainingapp/internal/cache"
	"github.com/lukaskostka/janrichtertrainingapp/internal/config"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/jwt"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/migrations"
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
	"github.com/lukaskostka/janrichtertrainingapp/internal/vision"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	tz, err := timezone.New()
	if err != nil {
		return nil, err
	}

	maker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	visionClient := vision.NewClient(cfg.VisionAPIURL, cfg.VisionAPIKey)

	services := Services{
		Auth:       authservice.NewAuthService(db, maker, logger),
		Clients:    clientservice.NewClientService(logger, db),
		Ledger:     ledgerservice.NewLedgerService(db, logger),
		Sessions:   sessionservice.NewSessionService(db, tz, logger),
		Recurrence: recurrenceservice.NewRecurrenceService(db, tz, logger),
		Sweeper:    sweeperservice.NewSweeperService(db, logger),
		Calendar:   calendarservice.NewCalendarService(db, cacheRedis, tz, logger),
		Exercises:  exerciseservice.NewExerciseService(logger, db),
		InBody:     inbodyservice.NewInBodyService(logger, db, visionClient, tz),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, tz, db, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
