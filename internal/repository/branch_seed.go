package repository

import "context"

func (r BranchRepository) SeedDefaults(ctx context.Context) error {
	branches := []struct {
		Name     string
		Location string
	}{
		{"Main", "Head office"},
		{"Sub-branch", "Satellite shop"},
	}

	for _, b := range branches {
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO branches (name, location, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			ON CONFLICT (name) DO NOTHING
		`, b.Name, b.Location)
		if err != nil {
			return err
		}
	}
	return nil
}
