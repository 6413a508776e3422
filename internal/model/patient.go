package model

import (
	"time"

	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type PatientPriority string

const (
	PatientPriorityNormal PatientPriority = "normal"
	PatientPriorityHigh   PatientPriority = "high"
	PatientPriorityUrgent PatientPriority = "urgent"
)

type Patient struct {
	Base
	ClinicID    uuid.UUID       `db:"clinic_id" json:"clinic_id"`
	Name        string          `db:"name" json:"name"`
	Email       string          `db:"email" json:"email"`
	Phone       string          `db:"phone" json:"phone"`
	DateOfBirth *time.Time      `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Priority    PatientPriority `db:"priority" json:"priority"`
	Status      PatientStatus   `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	ClinicID    string     `json:"clinic_id" binding:"required,uuid"`
	Name        string     `json:"name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=normal high urgent"`
}

type UpdatePatientRequest struct {
	Name        *string    `json:"name"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active inactive"`
}
