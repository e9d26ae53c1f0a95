package service

import (
	"context"
	"log/slog"
	"time"

	"rms-backend/internal/metrics"
	"rms-backend/internal/repository"
)

// ReportService loads the order and expense snapshots the aggregator works
// on and runs it. The branch scope is applied before aggregation so a scoped
// user never sees another branch's figures.
type ReportService struct {
	Orders   repository.JobOrderRepository
	Expenses repository.ExpenseRepository
	Logger   *slog.Logger
}

// fetchLimit bounds one aggregation input; the shop's whole history fits
// comfortably under it.
const fetchLimit = 10000

func (s ReportService) Snapshot(ctx context.Context, branchID *int64, from, to *time.Time) (*metrics.Snapshot, error) {
	return s.snapshotAt(ctx, branchID, from, to, time.Time{})
}

// SnapshotAt is Snapshot with an explicit reference time, used by the daily
// snapshot worker to pin the comparison month.
func (s ReportService) SnapshotAt(ctx context.Context, branchID *int64, from, to *time.Time, now time.Time) (*metrics.Snapshot, error) {
	return s.snapshotAt(ctx, branchID, from, to, now)
}

func (s ReportService) snapshotAt(ctx context.Context, branchID *int64, from, to *time.Time, now time.Time) (*metrics.Snapshot, error) {
	orders, err := s.Orders.List(ctx, repository.JobOrderFilter{BranchID: branchID, Limit: fetchLimit})
	if err != nil {
		return nil, err
	}
	expenses, err := s.Expenses.ListFiltered(ctx, branchID, nil, nil)
	if err != nil {
		return nil, err
	}

	opts := metrics.Options{Now: now}
	if from != nil || to != nil {
		rng := &metrics.DateRange{}
		if from != nil {
			rng.From = *from
		}
		if to != nil {
			rng.To = *to
		}
		opts.Range = rng
	}

	snap := metrics.Compute(orders, expenses, opts)
	s.Logger.Debug("metrics snapshot computed",
		"orders", len(orders), "expenses", len(expenses), "revenue", snap.Totals.Revenue)
	return &snap, nil
}
