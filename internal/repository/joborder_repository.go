package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"rms-backend/internal/db"
	"rms-backend/internal/domain"
)

type JobOrderRepository struct {
	DB *db.Postgres
}

type CreateJobOrderInput struct {
	ClientID    *int64
	ClientName  string
	BranchID    *int64
	MachineType string
	SerialNo    string
	Problem     string
	Technician  string
	Status      domain.JobOrderStatus
	GrandTotal  decimal.Decimal
	NetSales    decimal.Decimal
	Downpayment decimal.Decimal
	Materials   []MaterialInput
}

type MaterialInput struct {
	Material  string
	Quantity  int
	UnitPrice decimal.Decimal
	Used      bool
}

type UpdateJobOrderInput struct {
	MachineType *string
	SerialNo    *string
	Problem     *string
	Technician  *string
	GrandTotal  *decimal.Decimal
	NetSales    *decimal.Decimal
	Downpayment *decimal.Decimal
	// Non-nil Materials replaces the whole line-item set.
	Materials []MaterialInput
}

// JobOrderFilter narrows List results. Nil fields are ignored.
type JobOrderFilter struct {
	BranchID *int64
	Status   *domain.JobOrderStatus
	From     *time.Time
	To       *time.Time
	Limit    int
}

func (r JobOrderRepository) Create(ctx context.Context, in CreateJobOrderInput) (*domain.JobOrder, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	orderNo := fmt.Sprintf("JO-%s", strings.ToUpper(uuid.NewString()[:8]))

	var o domain.JobOrder
	err = tx.QueryRow(ctx, `
		INSERT INTO job_orders
		(order_no, client_id, client_name, branch_id, machine_type, serial_no, problem, technician,
		 status, grand_total, net_sales, downpayment, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, now(), now())
		RETURNING id, order_no, client_id, client_name, branch_id, machine_type, serial_no, problem,
		          technician, status, grand_total, net_sales, downpayment, created_at, completed_at, updated_at
	`, orderNo, in.ClientID, in.ClientName, in.BranchID, in.MachineType, in.SerialNo, in.Problem, in.Technician,
		string(in.Status), in.GrandTotal, in.NetSales, in.Downpayment).Scan(orderScanDest(&o)...)
	if err != nil {
		return nil, err
	}

	o.Materials, err = insertMaterials(ctx, tx, o.ID, in.Materials)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r JobOrderRepository) Get(ctx context.Context, id int64) (*domain.JobOrder, error) {
	var o domain.JobOrder
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, order_no, client_id, client_name, branch_id, machine_type, serial_no, problem,
		       technician, status, grand_total, net_sales, downpayment, created_at, completed_at, updated_at
		FROM job_orders
		WHERE id=$1
	`, id).Scan(orderScanDest(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	materials, err := r.loadMaterials(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Materials = materials[o.ID]
	return &o, nil
}

func (r JobOrderRepository) List(ctx context.Context, f JobOrderFilter) ([]domain.JobOrder, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, order_no, client_id, client_name, branch_id, machine_type, serial_no, problem,
		       technician, status, grand_total, net_sales, downpayment, created_at, completed_at, updated_at
		FROM job_orders
		WHERE ($1::bigint IS NULL OR branch_id=$1)
		  AND ($2::text IS NULL OR status=$2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`, f.BranchID, status, f.From, f.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.JobOrder
	var ids []int64
	for rows.Next() {
		var o domain.JobOrder
		if err := rows.Scan(orderScanDest(&o)...); err != nil {
			return nil, err
		}
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	materials, err := r.loadMaterials(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Materials = materials[orders[i].ID]
	}
	return orders, nil
}

func (r JobOrderRepository) Update(ctx context.Context, id int64, in UpdateJobOrderInput) (*domain.JobOrder, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o domain.JobOrder
	err = tx.QueryRow(ctx, `
		UPDATE job_orders SET
			machine_type = COALESCE($2, machine_type),
			serial_no    = COALESCE($3, serial_no),
			problem      = COALESCE($4, problem),
			technician   = COALESCE($5, technician),
			grand_total  = COALESCE($6, grand_total),
			net_sales    = COALESCE($7, net_sales),
			downpayment  = COALESCE($8, downpayment),
			updated_at   = now()
		WHERE id=$1
		RETURNING id, order_no, client_id, client_name, branch_id, machine_type, serial_no, problem,
		          technician, status, grand_total, net_sales, downpayment, created_at, completed_at, updated_at
	`, id, in.MachineType, in.SerialNo, in.Problem, in.Technician, in.GrandTotal, in.NetSales, in.Downpayment).Scan(orderScanDest(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Materials != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM materials WHERE job_order_id=$1`, id); err != nil {
			return nil, err
		}
		o.Materials, err = insertMaterials(ctx, tx, id, in.Materials)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if in.Materials == nil {
		materials, err := r.loadMaterials(ctx, []int64{id})
		if err != nil {
			return nil, err
		}
		o.Materials = materials[id]
	}
	return &o, nil
}

// UpdateStatus moves an order through its lifecycle. The completion timestamp
// is set when the order enters Completed and cleared when it leaves.
func (r JobOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.JobOrderStatus) (*domain.JobOrder, error) {
	var o domain.JobOrder
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE job_orders SET
			status = $2,
			completed_at = CASE WHEN $2 = 'Completed' THEN now() ELSE NULL END,
			updated_at = now()
		WHERE id=$1
		RETURNING id, order_no, client_id, client_name, branch_id, machine_type, serial_no, problem,
		          technician, status, grand_total, net_sales, downpayment, created_at, completed_at, updated_at
	`, id, string(status)).Scan(orderScanDest(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	materials, err := r.loadMaterials(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Materials = materials[id]
	return &o, nil
}

// Delete removes an order permanently, cascading to its materials.
func (r JobOrderRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM materials WHERE job_order_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM job_orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func insertMaterials(ctx context.Context, tx pgx.Tx, orderID int64, items []MaterialInput) ([]domain.Material, error) {
	var out []domain.Material
	for _, item := range items {
		var m domain.Material
		err := tx.QueryRow(ctx, `
			INSERT INTO materials (job_order_id, material, quantity, unit_price, used, created_at)
			VALUES ($1,$2,$3,$4,$5, now())
			RETURNING id, job_order_id, material, quantity, unit_price, used, created_at
		`, orderID, item.Material, item.Quantity, item.UnitPrice, item.Used).Scan(
			&m.ID, &m.JobOrderID, &m.Material, &m.Quantity, &m.UnitPrice, &m.Used, &m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r JobOrderRepository) loadMaterials(ctx context.Context, orderIDs []int64) (map[int64][]domain.Material, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, job_order_id, material, quantity, unit_price, used, created_at
		FROM materials
		WHERE job_order_id = ANY($1)
		ORDER BY id ASC
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byOrder := make(map[int64][]domain.Material)
	for rows.Next() {
		var m domain.Material
		if err := rows.Scan(&m.ID, &m.JobOrderID, &m.Material, &m.Quantity, &m.UnitPrice, &m.Used, &m.CreatedAt); err != nil {
			return nil, err
		}
		byOrder[m.JobOrderID] = append(byOrder[m.JobOrderID], m)
	}
	return byOrder, rows.Err()
}

// orderScanDest keeps every order SELECT aligned with one column order.
func orderScanDest(o *domain.JobOrder) []any {
	return []any{
		&o.ID, &o.OrderNo, &o.ClientID, &o.ClientName, &o.BranchID, &o.MachineType, &o.SerialNo, &o.Problem,
		&o.Technician, (*string)(&o.Status), &o.GrandTotal, &o.NetSales, &o.Downpayment,
		&o.CreatedAt, &o.CompletedAt, &o.UpdatedAt,
	}
}
