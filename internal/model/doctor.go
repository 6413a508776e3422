package model

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Specialty string    `db:"specialty" json:"specialty"`
	Active    bool      `db:"active" json:"active"`
}

type CreateDoctorRequest struct {
	ClinicID  string `json:"clinic_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty" binding:"required"`
}

type UpdateDoctorRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Specialty *string `json:"specialty"`
	Active    *bool   `json:"active"`
}

// DoctorStats aggregates a doctor's workload counters. Computed on demand
// and cached by the doctor service.
type DoctorStats struct {
	DoctorID          uuid.UUID      `json:"doctor_id"`
	TotalAppointments int            `json:"total_appointments"`
	TodayAppointments int            `json:"today_appointments"`
	WeekAppointments  int            `json:"week_appointments"`
	MonthAppointments int            `json:"month_appointments"`
	TotalPatients     int            `json:"total_patients"`
	Upcoming          []*Appointment `json:"upcoming_appointments"`
	GeneratedAt       time.Time      `json:"generated_at"`
}
