package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farxc/dados-abertos/internal/logger"
	"github.com/farxc/dados-abertos/internal/store"
)

type runTotals struct {
	created   int64
	processed int64
}

// recordRun stores a running row, executes fn and marks the row finished.
// fn opens its own transaction; the history row lives outside of it so a
// rolled-back import still leaves a failure record.
func recordRun(ctx context.Context, storage *store.Storage, appLogger *logger.Logger, kind, source string, fn func(ctx context.Context) (runTotals, error)) error {
	const component = "ImportHistory"

	run := &store.ImportRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Source:    source,
		Status:    store.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := storage.ImportRuns.Insert(ctx, run); err != nil {
		return err
	}
	appLogger.Debug(component, "Import run started: id=%s kind=%s", run.ID, kind)

	totals, runErr := fn(ctx)

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.CreatedCount = totals.created
	run.ProcessedRows = totals.processed
	run.Status = store.StatusSuccess
	if runErr != nil {
		msg := runErr.Error()
		run.Status = store.StatusFailure
		run.Error = &msg
	}

	// The run context may be the reason fn failed; the bookkeeping write
	// still has to land.
	if err := storage.ImportRuns.Finish(context.WithoutCancel(ctx), run); err != nil {
		appLogger.Error(component, "Failed to finish import run: id=%s error=%v", run.ID, err)
		if runErr == nil {
			return err
		}
	}
	return runErr
}
