package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"github.com/Farhan-slurrp/mycurrency/internal/api"
	"github.com/Farhan-slurrp/mycurrency/internal/api/middleware"
	"github.com/Farhan-slurrp/mycurrency/internal/repository"
	"github.com/Farhan-slurrp/mycurrency/internal/service"
	"github.com/Farhan-slurrp/mycurrency/internal/worker"
)

func (app *App) initHTTP(rateService service.RateServiceInterface, currencies repository.CurrencyRepository, enqueuer *worker.Enqueuer) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/currencies", api.HandleListCurrencies(currencies))
	r.Post("/currencies", api.HandleCreateCurrency(currencies))
	r.Get("/rates", api.HandleGetRatesForPeriod(rateService))
	r.Get("/rates/resolve", api.HandleResolveRate(rateService))
	r.Post("/rates/historical-load", api.HandleLoadHistorical(enqueuer))
	r.Get("/convert", api.HandleConvert(rateService))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.db, app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.cfg.Server.ServeAsynqmon {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     "/monitoring/tasks",
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
		})
		r.Mount(mon.RootPath(), mon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
