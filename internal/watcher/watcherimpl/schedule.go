package watcherimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Start sets up the polling job on the configured cron expression and a
// daily 3:00 AM ledger cleanup.
func (w *WatcherImpl) Start(ctx context.Context) error {
	if !w.Config.Watcher.Enabled {
		w.Logger.Info("Watcher disabled")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.scheduler != nil {
		return nil
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(w.location()))
	if err != nil {
		return fmt.Errorf("failed to create watcher scheduler: %w", err)
	}

	w.Logger.Info("Setting up feed watcher", "cron", w.Config.Watcher.Cron)
	_, err = scheduler.NewJob(
		gocron.CronJob(
			w.Config.Watcher.Cron,
			false, // Don't use seconds precision
		),
		gocron.NewTask(func() {
			checkCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()

			announced, err := w.CheckNewPosts(checkCtx)
			if err != nil {
				w.Logger.Error("Scheduled feed check failed", "error", err)
				return
			}
			w.Logger.Info("Scheduled feed check finished", "announced", announced)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule feed check: %w", err)
	}

	// Schedule a job to run at 3:00 AM every day
	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				w.Logger.Info("Context cancelled, stopping ledger cleanup job")
				return
			}

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			if _, err := w.CleanupLedger(cleanupCtx); err != nil {
				w.Logger.Error("Failed to clean up delivery ledger", "error", err)
			}
		}),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule ledger cleanup: %w", err)
	}

	scheduler.Start()
	w.scheduler = scheduler

	go func() {
		<-ctx.Done()
		if err := w.Stop(); err != nil {
			w.Logger.Error("Failed to shut down watcher scheduler", "error", err)
		}
	}()

	return nil
}

// Stop shuts the scheduler down. It is safe to call more than once.
func (w *WatcherImpl) Stop() error {
	w.mu.Lock()
	scheduler := w.scheduler
	w.scheduler = nil
	w.mu.Unlock()

	if scheduler == nil {
		return nil
	}
	w.Logger.Info("Stopping watcher scheduler")
	return scheduler.Shutdown()
}

func (w *WatcherImpl) CleanupLedger(ctx context.Context) (int64, error) {
	w.Logger.Info("Starting delivery ledger cleanup", "retention", w.Config.Watcher.Retention)

	rowsDeleted, err := w.DeliveryRepo.CleanupOldRecords(ctx, w.Config.Watcher.Retention)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up delivery ledger: %w", err)
	}

	w.Logger.Info("Delivery ledger cleanup completed", "rows_deleted", rowsDeleted)
	return rowsDeleted, nil
}
