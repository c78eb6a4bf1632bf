package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Job is a named periodic task. Run errors are logged and the job keeps
// its cadence; a job failure must never take the process down.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Loop executes the job on its interval until the context is cancelled.
// Jobs with a non-positive interval never run.
func Loop(ctx context.Context, job Job, logger *slog.Logger) {
	if job.Interval <= 0 || job.Run == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				logger.Error("scheduled job failed", "job", job.Name, "error", err)
			}
		}
	}
}
