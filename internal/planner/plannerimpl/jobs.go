package plannerimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/contentflow/internal/metrics"
)

const jobTimeout = 5 * time.Minute

// Schedule registers the cleanup and agenda jobs on one scheduler and shuts
// it down when ctx is done.
func (p *PlannerImpl) Schedule(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(p.loc))
	if err != nil {
		return fmt.Errorf("failed to create planner scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(p.Config.Planner.CleanupCron, false),
		gocron.NewTask(func() {
			p.runJob(ctx, "history_cleanup", p.cleanupJob)
		}),
		gocron.WithName("history_cleanup"),
	)
	if err != nil {
		scheduler.Shutdown()
		return fmt.Errorf("failed to schedule history cleanup: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(p.Config.Planner.AgendaCron, false),
		gocron.NewTask(func() {
			p.runJob(ctx, "daily_agenda", func(jobCtx context.Context) error {
				return p.SendAgenda(jobCtx, p.now())
			})
		}),
		gocron.WithName("daily_agenda"),
	)
	if err != nil {
		scheduler.Shutdown()
		return fmt.Errorf("failed to schedule daily agenda: %w", err)
	}

	scheduler.Start()
	p.Logger.Info("Planner jobs scheduled",
		"cleanup", p.Config.Planner.CleanupCron,
		"agenda", p.Config.Planner.AgendaCron,
		"location", p.loc.String())

	go func() {
		<-ctx.Done()
		p.Logger.Info("Stopping planner scheduler")
		if err := scheduler.Shutdown(); err != nil {
			p.Logger.Error("Failed to shut down planner scheduler", "error", err)
		}
	}()

	return nil
}

func (p *PlannerImpl) runJob(ctx context.Context, name string, job func(context.Context) error) {
	if ctx.Err() != nil {
		p.Logger.Info("Context cancelled, skipping job", "job", name)
		return
	}

	p.Logger.Info("Starting scheduled job", "job", name)

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	err := job(jobCtx)
	p.Metrics.JobRuns.WithLabelValues(name, metrics.Result(err)).Inc()
	if err != nil {
		p.Logger.Error("Scheduled job failed", "job", name, "error", err)
	}
}

func (p *PlannerImpl) cleanupJob(ctx context.Context) error {
	removed, err := p.CleanupHistories(ctx)
	if err != nil {
		return err
	}
	p.Logger.Info("Chat history cleanup completed", "removed", removed)
	return nil
}
