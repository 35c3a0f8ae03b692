package models

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentIncomplete AppointmentStatus = "incomplete"
)

type AppointmentPriority string

const (
	PriorityLow    AppointmentPriority = "low"
	PriorityNormal AppointmentPriority = "normal"
	PriorityHigh   AppointmentPriority = "high"
	PriorityUrgent AppointmentPriority = "urgent"
)

// Appointment is a scheduled (future or past) engagement for a patient.
// Only scheduled appointments participate in next-visit derivation.
type Appointment struct {
	Base
	PatientID       uint                `gorm:"not null;index" json:"patient_id"`
	AppointmentDate time.Time           `gorm:"not null;index" json:"appointment_date"`
	Type            string              `gorm:"size:50;default:'checkup'" json:"type"`
	Status          AppointmentStatus   `gorm:"size:20;default:'scheduled';index" json:"status"`
	Duration        int                 `gorm:"default:60" json:"duration"`
	Priority        AppointmentPriority `gorm:"size:20;default:'normal'" json:"priority"`
	Notes           string              `json:"notes"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}
