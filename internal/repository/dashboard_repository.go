package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"rms-backend/internal/db"
	"rms-backend/internal/domain"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardSummary struct {
	TotalOrders      int64
	OpenOrders       int64
	CompletedToday   int64
	CompletedRevenue decimal.Decimal
}

type StatusCount struct {
	Status domain.JobOrderStatus
	Count  int64
}

type RecentOrder struct {
	ID          int64
	OrderNo     string
	ClientName  string
	MachineType string
	Status      domain.JobOrderStatus
	GrandTotal  decimal.Decimal
	CreatedAt   time.Time
}

type TechnicianLoad struct {
	Technician string
	Open       int64
	Completed  int64
}

func (r DashboardRepository) Summary(ctx context.Context, branchID *int64) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status NOT IN ('Completed','Canceled','Pull Out')) AS open,
			COUNT(*) FILTER (WHERE status = 'Completed' AND completed_at::date = CURRENT_DATE) AS completed_today,
			COALESCE(SUM(grand_total) FILTER (WHERE status = 'Completed'),0) AS completed_revenue
		FROM job_orders
		WHERE ($1::bigint IS NULL OR branch_id=$1)
	`, branchID).Scan(&s.TotalOrders, &s.OpenOrders, &s.CompletedToday, &s.CompletedRevenue)
	return s, err
}

func (r DashboardRepository) StatusCounts(ctx context.Context, branchID *int64) ([]StatusCount, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT status, COUNT(*) AS cnt
		FROM job_orders
		WHERE ($1::bigint IS NULL OR branch_id=$1)
		GROUP BY status
		ORDER BY cnt DESC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StatusCount
	for rows.Next() {
		var sc StatusCount
		var status string
		if err := rows.Scan(&status, &sc.Count); err != nil {
			return nil, err
		}
		sc.Status = domain.JobOrderStatus(status)
		items = append(items, sc)
	}
	return items, rows.Err()
}

// RecentOrders returns the latest orders for the dashboard feed, newest first.
func (r DashboardRepository) RecentOrders(ctx context.Context, branchID *int64, limit int) ([]RecentOrder, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, order_no, client_name, machine_type, status, grand_total, created_at
		FROM job_orders
		WHERE ($1::bigint IS NULL OR branch_id=$1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RecentOrder
	for rows.Next() {
		var ro RecentOrder
		var status string
		if err := rows.Scan(&ro.ID, &ro.OrderNo, &ro.ClientName, &ro.MachineType, &status, &ro.GrandTotal, &ro.CreatedAt); err != nil {
			return nil, err
		}
		ro.Status = domain.JobOrderStatus(status)
		items = append(items, ro)
	}
	return items, rows.Err()
}

// TechnicianLoads reports open and completed order counts per technician,
// backing the technician dashboard.
func (r DashboardRepository) TechnicianLoads(ctx context.Context, branchID *int64, limit int) ([]TechnicianLoad, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT technician,
		       COUNT(*) FILTER (WHERE status NOT IN ('Completed','Canceled','Pull Out')) AS open,
		       COUNT(*) FILTER (WHERE status = 'Completed') AS completed
		FROM job_orders
		WHERE technician <> '' AND ($1::bigint IS NULL OR branch_id=$1)
		GROUP BY technician
		ORDER BY open DESC, completed DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TechnicianLoad
	for rows.Next() {
		var tl TechnicianLoad
		var tech pgtype.Text
		if err := rows.Scan(&tech, &tl.Open, &tl.Completed); err != nil {
			return nil, err
		}
		tl.Technician = tech.String
		items = append(items, tl)
	}
	return items, rows.Err()
}
