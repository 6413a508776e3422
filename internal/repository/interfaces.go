package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/scheduler-api/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTimeConflict is returned when a write loses the race against a
	// concurrent booking and the database exclusion constraint fires.
	ErrTimeConflict = errors.New("appointment time conflict")
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the persistence contract of the
	// scheduling core. FindAppointments is the range query the conflict
	// detector relies on; it returns non-cancelled appointments only.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		FindAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
		CountByDoctor(ctx context.Context, doctorID uuid.UUID, from, to *time.Time) (int, error)
		CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error)
		ListUpcoming(ctx context.Context, doctorID uuid.UUID, from time.Time, limit int) ([]*model.Appointment, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, clinicID uuid.UUID, search string) ([]*model.Patient, error)
	}

	// ClinicRepository is read-only here: clinic administration happens
	// in a separate system, this service only needs opening hours.
	ClinicRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		List(ctx context.Context) ([]*model.Clinic, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
