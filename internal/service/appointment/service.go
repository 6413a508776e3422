package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/medagenda/scheduler-api/internal/email"
	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/repository"
	"github.com/medagenda/scheduler-api/internal/scheduling"
	"github.com/medagenda/scheduler-api/internal/service/event"
	apperrors "github.com/medagenda/scheduler-api/pkg/errors"
	"github.com/medagenda/scheduler-api/pkg/metrics"
)

// Service is the conflict-aware booking gate: every create and reschedule
// runs the scheduling policy and conflict detector before touching
// storage, and the database exclusion constraint settles races the
// pre-check cannot see.
type Service struct {
	repo        repository.AppointmentRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	events      *event.Service
	mailer      email.Service
	policy      scheduling.Policy
	metrics     *metrics.Metrics

	// now is the reference clock; replaceable in tests.
	now func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	events *event.Service,
	mailer email.Service,
	policy scheduling.Policy,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:        repo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		events:      events,
		mailer:      mailer,
		policy:      policy,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *Service) Schedule(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor ID", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid patient ID", err)
	}

	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(err)
	}
	if !doctor.Active {
		return nil, apperrors.BadRequest("doctor is not accepting appointments", nil)
	}

	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(err)
	}

	if rej := s.validate(ctx, doctorID, req.StartTime, uuid.Nil); rej != nil {
		return nil, rej
	}

	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		DoctorID:  doctorID,
		PatientID: patientID,
		StartTime: req.StartTime,
		Status:    model.AppointmentStatusScheduled,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrTimeConflict) {
			// Lost the race after the pre-check: same rejection shape
			// as the pre-check, the caller retries with a new slot.
			s.metrics.ConflictsDetected.WithLabelValues("commit").Inc()
			return nil, s.conflictRejection(ctx, doctorID, req.StartTime)
		}
		return nil, apperrors.Internal(err)
	}

	s.metrics.AppointmentsBooked.Inc()
	s.publish(ctx, model.EventAppointmentCreated, apt)

	if err := s.mailer.SendBookingConfirmation(ctx, patient.Email, apt); err != nil {
		log.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("failed to send booking confirmation")
	}

	return apt, nil
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	if apt.Status.IsTerminal() {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot reschedule a %s appointment", apt.Status), nil)
	}

	if rej := s.validate(ctx, apt.DoctorID, newStart, apt.ID); rej != nil {
		return nil, rej
	}

	previousStart := apt.StartTime
	apt.StartTime = newStart

	if err := s.repo.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrTimeConflict) {
			s.metrics.ConflictsDetected.WithLabelValues("commit").Inc()
			return nil, s.conflictRejection(ctx, apt.DoctorID, newStart)
		}
		return nil, apperrors.Internal(err)
	}

	s.publish(ctx, model.EventAppointmentRescheduled, map[string]interface{}{
		"appointment_id": apt.ID,
		"previous_start": previousStart,
		"new_start":      newStart,
	})

	if patient, err := s.patientRepo.Get(ctx, apt.PatientID); err == nil {
		if err := s.mailer.SendRescheduleNotice(ctx, patient.Email, apt, previousStart); err != nil {
			log.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("failed to send reschedule notice")
		}
	}

	return apt, nil
}

// validate runs the policy and the windowed conflict pre-check. A nil
// return means the instant is bookable as far as this request can tell;
// the exclusion constraint has the final word at commit.
func (s *Service) validate(ctx context.Context, doctorID uuid.UUID, start time.Time, excludeID uuid.UUID) *scheduling.Rejection {
	if rej := s.policy.ValidateStart(start, s.now()); rej != nil {
		s.metrics.PolicyRejections.WithLabelValues(rej.Code).Inc()
		return rej
	}

	from, to := s.policy.ConflictWindow(start)
	var exclude *uuid.UUID
	if excludeID != uuid.Nil {
		exclude = &excludeID
	}

	existing, err := s.repo.FindAppointments(ctx, doctorID, from, to, exclude)
	if err != nil {
		log.Error().Err(err).Str("doctor_id", doctorID.String()).Msg("conflict pre-check query failed")
		// Fall through to the commit-time constraint rather than
		// rejecting a possibly free slot.
		return nil
	}

	bookings := toBookings(existing)
	if conflicting := s.policy.Conflicts(start, bookings, excludeID); len(conflicting) > 0 {
		s.metrics.ConflictsDetected.WithLabelValues("precheck").Inc()
		log.Info().
			Str("doctor_id", doctorID.String()).
			Time("candidate", start).
			Int("conflicts", len(conflicting)).
			Msg("booking rejected by conflict pre-check")
		return s.conflictRejection(ctx, doctorID, start)
	}

	return nil
}

// conflictRejection builds the structured conflict error, attaching up to
// MaxSuggestions alternative slots for the same day.
func (s *Service) conflictRejection(ctx context.Context, doctorID uuid.UUID, candidate time.Time) *scheduling.Rejection {
	rej := &scheduling.Rejection{
		Code:    scheduling.CodeTimeConflict,
		Message: "the requested time conflicts with an existing appointment",
	}

	timer := prometheus.NewTimer(s.metrics.SuggestionLatency)
	defer timer.ObserveDuration()

	year, month, day := candidate.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, candidate.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	existing, err := s.repo.FindAppointments(ctx, doctorID, dayStart, dayEnd, nil)
	if err != nil {
		log.Warn().Err(err).Msg("could not compute alternative slots")
		return rej
	}

	booked := make([]time.Time, 0, len(existing))
	for _, apt := range existing {
		booked = append(booked, apt.StartTime)
	}
	rej.SuggestedSlots = s.policy.SuggestSlots(candidate, booked)
	return rej
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

// Update applies status and note changes. Status transitions are not
// restricted; only reschedules are guarded, and those go through
// Reschedule.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	statusChanged := false
	if req.Status != nil && *req.Status != apt.Status {
		apt.Status = *req.Status
		statusChanged = true
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, apperrors.Internal(err)
	}

	if statusChanged {
		s.publish(ctx, model.EventAppointmentStatusChanged, map[string]interface{}{
			"appointment_id": apt.ID,
			"status":         apt.Status,
		})
	}

	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("appointment is already cancelled", nil)
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("cannot cancel a completed appointment", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.CancelReason = &reason

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.metrics.AppointmentsCancelled.Inc()
	s.publish(ctx, model.EventAppointmentCancelled, map[string]interface{}{
		"appointment_id": apt.ID,
		"reason":         reason,
	})

	if patient, err := s.patientRepo.Get(ctx, apt.PatientID); err == nil {
		if err := s.mailer.SendCancellation(ctx, patient.Email, apt, reason); err != nil {
			log.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("failed to send cancellation notice")
		}
	}

	return apt, nil
}

// Delete removes an appointment row. Only cancelled appointments may be
// deleted; everything else keeps its history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return apperrors.Internal(err)
	}

	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.BadRequest("only cancelled appointments can be deleted", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Availability returns every free slot for a doctor on a date.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]scheduling.Slot, error) {
	if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, apperrors.Internal(err)
	}

	year, month, day := date.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	existing, err := s.repo.FindAppointments(ctx, doctorID, dayStart, dayEnd, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	booked := make([]time.Time, 0, len(existing))
	for _, apt := range existing {
		booked = append(booked, apt.StartTime)
	}
	return s.policy.FreeSlots(date, booked), nil
}

// MonthCalendar groups a month's appointments by day, optionally
// filtered to one doctor.
func (s *Service) MonthCalendar(ctx context.Context, doctorID uuid.UUID, year, month int) (*model.MonthCalendar, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.BadRequest("month must be between 1 and 12", nil)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{
		DoctorID:  doctorID,
		StartDate: first,
		EndDate:   next,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	byDay := make(map[string][]*model.Appointment)
	var order []string
	for _, apt := range appointments {
		key := apt.StartTime.Format("2006-01-02")
		if _, seen := byDay[key]; !seen {
			order = append(order, key)
		}
		byDay[key] = append(byDay[key], apt)
	}

	cal := &model.MonthCalendar{Year: year, Month: month}
	for _, key := range order {
		cal.Days = append(cal.Days, &model.CalendarDay{Date: key, Appointments: byDay[key]})
	}
	return cal, nil
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Record(ctx, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to record outbox event")
	}
}

func toBookings(appointments []*model.Appointment) []scheduling.Booking {
	bookings := make([]scheduling.Booking, 0, len(appointments))
	for _, apt := range appointments {
		bookings = append(bookings, scheduling.Booking{ID: apt.ID, StartTime: apt.StartTime})
	}
	return bookings
}
