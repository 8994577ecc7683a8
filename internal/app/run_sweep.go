package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-tams/sweepkit/internal/config"
	"github.com/dev-tams/sweepkit/internal/notify"
	"github.com/dev-tams/sweepkit/internal/storage"
	"github.com/dev-tams/sweepkit/internal/sweep"
)

const notificationTimeout = 5 * time.Second

// ErrPartialFailure marks a run where some shard listings or deletions
// failed while the rest of the run completed. The CLI maps it to a
// distinguishable exit code so silent partial failure cannot happen.
var ErrPartialFailure = errors.New("sweep finished with failures")

// RunSweep wires a store, notifier and sweeper from config and executes one
// run. forceDryRun overrides the configured dry-run flag; the scan command
// uses it to guarantee a read-only pass.
func RunSweep(ctx context.Context, cfg *config.Config, log zerolog.Logger, forceDryRun bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dryRun := cfg.DryRun || forceDryRun

	if len(cfg.Patterns) == 0 {
		log.Warn().Msg("no filter patterns configured; nothing will match")
	}

	store, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	dispatcher, err := notify.NewDispatcher(cfg.Notifications)
	if err != nil {
		return err
	}

	sw := sweep.New(store, log, sweep.Options{
		Prefixes:  cfg.Prefixes,
		Patterns:  cfg.Patterns,
		Threads:   cfg.Threads,
		MultiRead: cfg.MultiRead,
		DryRun:    dryRun,
	})

	started := time.Now()
	sum, runErr := sw.Run(ctx)
	duration := time.Since(started).Round(time.Millisecond)

	status := notify.StatusSuccess
	switch {
	case runErr != nil:
		status = notify.StatusFailure
	case sum.Failed():
		status = notify.StatusPartial
	}

	event := notify.Event{
		Bucket:    cfg.Bucket,
		Provider:  cfg.Provider,
		Status:    status,
		DryRun:    dryRun,
		Listed:    sum.Listed,
		Matched:   sum.Matched,
		Processed: sum.Processed,
		Failures:  len(sum.ListFailures) + len(sum.DeleteFailures),
		Duration:  duration.String(),
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}
	notifyResult(ctx, dispatcher, event, log)

	if runErr != nil {
		return runErr
	}
	if sum.Failed() {
		return fmt.Errorf("%w: %d shard listings, %d deletions",
			ErrPartialFailure, len(sum.ListFailures), len(sum.DeleteFailures))
	}
	return nil
}

func notifyResult(ctx context.Context, dispatcher *notify.Dispatcher, event notify.Event, log zerolog.Logger) {
	notifyCtx, cancel := notificationContext(ctx)
	defer cancel()

	if err := dispatcher.Notify(notifyCtx, event); err != nil {
		log.Warn().Err(err).Str("status", event.Status).Msg("notification failed")
	}
}

func notificationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), notificationTimeout)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
}
