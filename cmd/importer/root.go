package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/farxc/dados-abertos/internal/db"
	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/migrations"
	"github.com/farxc/dados-abertos/internal/store"
)

type application struct {
	config    config
	appLogger *logger.Logger
	storage   *store.Storage
}

func newRootCmd(cfg config) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "importer",
		Short:         "Load IBGE localities and Receita Federal companies into the database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "loglevel", cfg.logLevel, "Log level: debug, info, warn, error")

	// run opens the database, applies pending migrations and hands the
	// wired application to fn. Errors are logged once here.
	run := func(name string, fn func(ctx context.Context, app *application) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			const component = "Main"
			appLogger := logger.New(logger.ParseLevel(logLevel))

			err := withApplication(cmd.Context(), cfg, appLogger, func(ctx context.Context, app *application) error {
				monitor := NewMonitor()
				monitor.Start(400*time.Millisecond, appLogger)
				start := time.Now()

				err := fn(ctx, app)

				stats := monitor.Stop()
				appLogger.Info(component, "%s finished: duration=%.2fs peakGoroutines=%d peakHeap=%s",
					name, time.Since(start).Seconds(), stats.PeakGoroutines, stats.PeakHeap())
				return err
			})
			if err != nil {
				appLogger.Error(component, "%s failed: %v", name, err)
			}
			return err
		}
	}

	cmd.AddCommand(
		newMigrateCmd(run),
		newImportLocalitiesCmd(run),
		newPopulateIBGECmd(run),
		newPopulateCompaniesCmd(run),
	)
	return cmd
}

type runner func(name string, fn func(ctx context.Context, app *application) error) func(*cobra.Command, []string) error

func withApplication(ctx context.Context, cfg config, appLogger *logger.Logger, fn func(ctx context.Context, app *application) error) error {
	const component = "Main"

	conn, err := db.New(cfg.db.driver, cfg.db.addr, cfg.db.maxOpenConns, cfg.db.maxIdleConns, cfg.db.maxIdleTime)
	if err != nil {
		return errors.Wrap(err, "database connection failed")
	}
	defer conn.Close()
	appLogger.Info(component, "Database connection pool established: driver=%s", cfg.db.driver)

	if err := migrations.Up(ctx, conn); err != nil {
		return err
	}

	return fn(ctx, &application{
		config:    cfg,
		appLogger: appLogger,
		storage:   store.NewStorage(conn),
	})
}
