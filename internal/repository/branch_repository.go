package repository

import (
	"context"

	"rms-backend/internal/db"
	"rms-backend/internal/domain"
)

type BranchRepository struct {
	DB *db.Postgres
}

// List returns all active branches ordered alphabetically.
func (r BranchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, location, created_at, updated_at
		FROM branches
		WHERE deleted_at IS NULL
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r BranchRepository) Create(ctx context.Context, name, location string) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO branches (name, location, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, name, location, created_at, updated_at
	`, name, location).Scan(&b.ID, &b.Name, &b.Location, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
