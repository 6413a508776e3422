package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
)

// Postgres error codes raised by the booking exclusion constraint. The
// constraint is the authority of record for the no-overlap invariant;
// the service-level conflict check is only a fast pre-filter.
const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

func translateConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation {
			return repository.ErrTimeConflict
		}
	}
	return err
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, start_time,
			status, reason, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.StartTime,
		appointment.Status,
		appointment.Reason,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if conflictErr := translateConflict(err); conflictErr == repository.ErrTimeConflict {
			return conflictErr
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, reason, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, status = $2, reason = $3, notes = $4, cancel_reason = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.Status,
		appointment.Reason,
		appointment.Notes,
		appointment.CancelReason,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		if conflictErr := translateConflict(err); conflictErr == repository.ErrTimeConflict {
			return conflictErr
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, reason, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, reason, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND start_time >= $2
		AND start_time <= $3
		AND status != 'cancelled'
	`
	args := []interface{}{doctorID, from, to}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByDoctor(ctx context.Context, doctorID uuid.UUID, from, to *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE doctor_id = $1`
	args := []interface{}{doctorID}
	argCount := 2

	if from != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, *to)
		argCount++
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error) {
	query := `SELECT COUNT(DISTINCT patient_id) FROM appointments WHERE doctor_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, doctorID); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, doctorID uuid.UUID, from time.Time, limit int) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time,
			   status, reason, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND start_time >= $2
		AND status != 'cancelled'
		ORDER BY start_time ASC
		LIMIT $3
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appointments, nil
}
