package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/store"
)

type application struct {
	config    config
	store     *store.Storage
	appLogger *logger.Logger
}

type config struct {
	addr string
	db   dbConfig
}

type dbConfig struct {
	driver       string
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/regions", app.handleListRegions)
		r.Get("/states", app.handleListStates)
		r.Get("/municipalities", app.handleListMunicipalities)
		r.Get("/districts", app.handleListDistricts)
		r.Get("/companies", app.handleListCompanies)
		r.Route("/imports", func(r chi.Router) {
			r.Get("/history", app.handleGetImportHistory)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.appLogger.Info("API", "Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
