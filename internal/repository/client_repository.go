package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rms-backend/internal/db"
	"rms-backend/internal/domain"
)

type ClientRepository struct {
	DB *db.Postgres
}

func (r ClientRepository) List(ctx context.Context, branchID *int64, limit int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, name, phone, email, address, created_at, updated_at
		FROM clients
		WHERE deleted_at IS NULL AND ($1::bigint IS NULL OR branch_id=$1)
		ORDER BY name ASC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.BranchID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r ClientRepository) Upsert(ctx context.Context, c domain.Client) (*domain.Client, error) {
	var out domain.Client
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO clients (id, branch_id, name, phone, email, address, created_at, updated_at)
		VALUES (COALESCE($1, nextval('clients_id_seq')), $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			branch_id=EXCLUDED.branch_id, name=EXCLUDED.name, phone=EXCLUDED.phone,
			email=EXCLUDED.email, address=EXCLUDED.address, updated_at=now(), deleted_at=NULL
		RETURNING id, branch_id, name, phone, email, address, created_at, updated_at
	`, nullableID(c.ID), c.BranchID, c.Name, c.Phone, c.Email, c.Address).Scan(
		&out.ID, &out.BranchID, &out.Name, &out.Phone, &out.Email, &out.Address, &out.CreatedAt, &out.UpdatedAt,
	)
	return &out, err
}

func (r ClientRepository) Get(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, branch_id, name, phone, email, address, created_at, updated_at
		FROM clients
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	var c domain.Client
	if err := row.Scan(&c.ID, &c.BranchID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r ClientRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `UPDATE clients SET deleted_at = now() WHERE id=$1`, id)
	return err
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
