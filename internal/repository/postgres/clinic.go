package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
)

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, address, phone, open_hour, close_hour,
			   created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) List(ctx context.Context) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, address, phone, open_hour, close_hour,
			   created_at, updated_at
		FROM clinics
		ORDER BY name ASC
	`
	var clinics []*model.Clinic
	err := r.db.SelectContext(ctx, &clinics, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}
