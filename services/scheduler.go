package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartArchiveScheduler archives finished brackets every interval until the
// returned scheduler is shut down. Runs never overlap.
func StartArchiveScheduler(ctx context.Context, archive ArchiveService, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			archived, err := archive.ArchivePending(ctx)
			if err != nil {
				logger.Error("archive run failed", slog.Int("archived", archived), slog.Any("error", err))
				return
			}
			if archived > 0 {
				logger.Info("archive run finished", slog.Int("archived", archived))
			}
		}),
		gocron.WithName("bracket-archive"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule archive job: %w", err)
	}

	sched.Start()
	return sched, nil
}
