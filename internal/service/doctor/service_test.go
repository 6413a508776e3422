package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
)

var fixedNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (r *fakeDoctorRepo) Update(_ context.Context, d *model.Doctor) error {
	if _, ok := r.doctors[d.ID]; !ok {
		return repository.ErrNotFound
	}
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.doctors, id)
	return nil
}

func (r *fakeDoctorRepo) List(_ context.Context, _ uuid.UUID, _ bool) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

// countingAppointmentRepo tracks how many aggregate queries ran, so the
// tests can observe cache hits.
type countingAppointmentRepo struct {
	appointments []*model.Appointment
	countCalls   int
}

func (r *countingAppointmentRepo) Create(_ context.Context, _ *model.Appointment) error { return nil }
func (r *countingAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (r *countingAppointmentRepo) Update(_ context.Context, _ *model.Appointment) error { return nil }
func (r *countingAppointmentRepo) Delete(_ context.Context, _ uuid.UUID) error          { return nil }
func (r *countingAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *countingAppointmentRepo) FindAppointments(_ context.Context, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *countingAppointmentRepo) CountByDoctor(_ context.Context, doctorID uuid.UUID, from, to *time.Time) (int, error) {
	r.countCalls++
	count := 0
	for _, apt := range r.appointments {
		if apt.DoctorID != doctorID {
			continue
		}
		if from != nil && apt.StartTime.Before(*from) {
			continue
		}
		if to != nil && !apt.StartTime.Before(*to) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *countingAppointmentRepo) CountDistinctPatients(_ context.Context, doctorID uuid.UUID) (int, error) {
	seen := make(map[uuid.UUID]bool)
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID {
			seen[apt.PatientID] = true
		}
	}
	return len(seen), nil
}

func (r *countingAppointmentRepo) ListUpcoming(_ context.Context, doctorID uuid.UUID, from time.Time, limit int) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID && !apt.StartTime.Before(from) {
			out = append(out, apt)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *model.Doctor, *countingAppointmentRepo) {
	t.Helper()

	doctor := &model.Doctor{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Dr. Vega",
		Active: true,
	}

	patientA := uuid.New()
	patientB := uuid.New()
	aptRepo := &countingAppointmentRepo{
		appointments: []*model.Appointment{
			{DoctorID: doctor.ID, PatientID: patientA, StartTime: fixedNow.Add(2 * time.Hour)},
			{DoctorID: doctor.ID, PatientID: patientB, StartTime: fixedNow.Add(26 * time.Hour)},
			{DoctorID: doctor.ID, PatientID: patientA, StartTime: fixedNow.Add(40 * 24 * time.Hour)},
		},
	}

	svc := NewService(&fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{doctor.ID: doctor}}, aptRepo)
	svc.now = func() time.Time { return fixedNow }

	return svc, doctor, aptRepo
}

func TestStats(t *testing.T) {
	svc, doctor, _ := newTestService(t)

	stats, err := svc.Stats(context.Background(), doctor.ID)
	require.NoError(t, err)

	assert.Equal(t, doctor.ID, stats.DoctorID)
	assert.Equal(t, 3, stats.TotalAppointments)
	assert.Equal(t, 1, stats.TodayAppointments)
	assert.Equal(t, 2, stats.WeekAppointments)
	assert.Equal(t, 2, stats.MonthAppointments)
	assert.Equal(t, 2, stats.TotalPatients)
	assert.Len(t, stats.Upcoming, 3)
}

func TestStatsAreCached(t *testing.T) {
	svc, doctor, aptRepo := newTestService(t)

	_, err := svc.Stats(context.Background(), doctor.ID)
	require.NoError(t, err)
	firstCalls := aptRepo.countCalls
	require.Greater(t, firstCalls, 0)

	_, err = svc.Stats(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, firstCalls, aptRepo.countCalls, "second call must hit the cache")

	svc.InvalidateStats(doctor.ID)
	_, err = svc.Stats(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Greater(t, aptRepo.countCalls, firstCalls, "invalidation must force a recompute")
}

func TestStatsUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Stats(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestUpdateInvalidatesStats(t *testing.T) {
	svc, doctor, aptRepo := newTestService(t)

	_, err := svc.Stats(context.Background(), doctor.ID)
	require.NoError(t, err)
	firstCalls := aptRepo.countCalls

	name := "Dr. Vega-Lopez"
	_, err = svc.Update(context.Background(), doctor.ID, &model.UpdateDoctorRequest{Name: &name})
	require.NoError(t, err)

	_, err = svc.Stats(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Greater(t, aptRepo.countCalls, firstCalls)
}
