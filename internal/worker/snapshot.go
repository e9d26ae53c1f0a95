package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"rms-backend/internal/domain"
	"rms-backend/internal/repository"
	"rms-backend/internal/service"
)

// SnapshotWorker records a daily revenue summary into the activity log so the
// shop keeps a trail of end-of-day figures even if dashboards are never opened.
type SnapshotWorker struct {
	Reports  service.ReportService
	Logs     repository.ActivityLogRepository
	Schedule string
	Logger   *slog.Logger

	cron *cron.Cron
}

func (w *SnapshotWorker) Start(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.Schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		w.run(runCtx)
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", w.Schedule, err)
	}
	w.cron.Start()
	w.Logger.Info("snapshot worker started", "schedule", w.Schedule)
	return nil
}

func (w *SnapshotWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *SnapshotWorker) run(ctx context.Context) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	snap, err := w.Reports.SnapshotAt(ctx, nil, &dayStart, &dayEnd, now)
	if err != nil {
		w.Logger.Error("daily snapshot failed", "err", err)
		return
	}

	_, err = w.Logs.Create(ctx, repository.CreateActivityLogInput{
		Title: "Daily revenue snapshot",
		Message: fmt.Sprintf("%s: revenue %s, net %s, expenses %s, profit %s, %d sales",
			dayStart.Format("2006-01-02"),
			snap.Totals.Revenue.StringFixed(2),
			snap.Totals.Net.StringFixed(2),
			snap.Totals.Expenses.StringFixed(2),
			snap.Totals.Profit.StringFixed(2),
			snap.Totals.Sales),
		Actor:     "system",
		Type:      domain.LogInfo,
		Timestamp: now,
	})
	if err != nil {
		w.Logger.Error("failed to record snapshot", "err", err)
		return
	}
	w.Logger.Info("daily snapshot recorded", "date", dayStart.Format("2006-01-02"))
}
