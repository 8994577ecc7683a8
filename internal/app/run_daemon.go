package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-tams/sweepkit/internal/config"
	"github.com/dev-tams/sweepkit/internal/schedule"
)

// RunDaemon runs sweeps on the configured cron schedule until the context is
// canceled. A partial failure is logged and the daemon keeps running; any
// other error stops it.
func RunDaemon(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	expr := strings.TrimSpace(cfg.Schedule)
	if expr == "" {
		return fmt.Errorf("daemon: schedule is required")
	}
	spec, err := schedule.Parse(expr)
	if err != nil {
		return fmt.Errorf("daemon: invalid schedule %q: %w", expr, err)
	}

	log.Info().Str("schedule", expr).Msg("daemon started")

	for {
		next, ok := spec.Next(time.Now())
		if !ok {
			return fmt.Errorf("daemon: schedule %q never fires", expr)
		}
		log.Debug().Time("next", next).Msg("sleeping until next sweep")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("daemon shutdown requested")
			return nil
		case <-timer.C:
		}

		if err := RunSweep(ctx, cfg, log, false); err != nil {
			if errors.Is(err, ErrPartialFailure) {
				log.Error().Err(err).Msg("scheduled sweep finished with failures")
				continue
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("daemon run: %w", err)
		}
	}
}
