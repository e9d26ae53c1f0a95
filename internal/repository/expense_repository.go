package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"rms-backend/internal/db"
	"rms-backend/internal/domain"
)

type ExpenseRepository struct {
	DB *db.Postgres
}

type CreateExpenseInput struct {
	BillName string
	Amount   decimal.Decimal
	Date     time.Time
	BranchID *int64
}

func (r ExpenseRepository) Create(ctx context.Context, in CreateExpenseInput) (*domain.Expense, error) {
	var e domain.Expense
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO expenses (bill_name, amount, expense_date, branch_id, created_at)
		VALUES ($1,$2,$3,$4, now())
		RETURNING id, branch_id, bill_name, amount, expense_date, created_at
	`, in.BillName, in.Amount, in.Date, in.BranchID).Scan(
		&e.ID, &e.BranchID, &e.BillName, &e.Amount, &e.Date, &e.CreatedAt,
	)
	return &e, err
}

func (r ExpenseRepository) List(ctx context.Context, branchID *int64, limit int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, bill_name, amount, expense_date, created_at
		FROM expenses
		WHERE deleted_at IS NULL
		  AND ($1::bigint IS NULL OR branch_id = $1)
		ORDER BY expense_date DESC, id DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r ExpenseRepository) ListFiltered(ctx context.Context, branchID *int64, from, to *time.Time) ([]domain.Expense, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, bill_name, amount, expense_date, created_at
		FROM expenses
		WHERE deleted_at IS NULL
		  AND ($1::bigint IS NULL OR branch_id = $1)
		  AND ($2::timestamptz IS NULL OR expense_date >= $2)
		  AND ($3::timestamptz IS NULL OR expense_date <= $3)
		ORDER BY expense_date DESC, id DESC
	`, branchID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExpenses(rows)
}

func (r ExpenseRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE expenses SET deleted_at = now() WHERE id=$1`, id)
	return err
}

func scanExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	var items []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.BranchID, &e.BillName, &e.Amount, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
