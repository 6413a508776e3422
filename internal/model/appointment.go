package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// IsTerminal reports whether an appointment in this status can no longer
// be moved to a different time.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

type Appointment struct {
	Base
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Reason       string            `db:"reason" json:"reason"`
	Notes        *string           `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	DoctorID  string    `json:"doctor_id" binding:"required,uuid"`
	PatientID string    `json:"patient_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	Reason    string    `json:"reason" binding:"required,max=1000"`
	Notes     *string   `json:"notes" binding:"omitempty,max=2000"`
}

type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

type UpdateAppointmentRequest struct {
	Status *AppointmentStatus `json:"status"`
	Reason *string            `json:"reason"`
	Notes  *string            `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}

// CalendarDay groups a day's appointments for the month view.
type CalendarDay struct {
	Date         string         `json:"date"`
	Appointments []*Appointment `json:"appointments"`
}

type MonthCalendar struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
