package models

import (
	"strings"
	"time"
)

// Visit represents a single patient visit with its own billing amounts.
// Attachments holds uploaded image filenames as a comma-joined list; the
// files themselves live outside the database and are opaque to this system.
type Visit struct {
	Base
	PatientID   uint      `gorm:"not null;index" json:"patient_id"`
	VisitDate   time.Time `gorm:"not null" json:"visit_date"`
	Diagnosis   string    `json:"diagnosis"`
	AmountDue   float64   `gorm:"default:0" json:"amount_due"`
	AmountPaid  float64   `gorm:"default:0" json:"amount_paid"`
	Medications string    `json:"medications"`
	Attachments string    `json:"attachments"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// AttachmentList splits the comma-joined attachment field into filenames.
func (v *Visit) AttachmentList() []string {
	if v.Attachments == "" {
		return nil
	}
	return strings.Split(v.Attachments, ",")
}

// SetAttachmentList joins filenames back into the stored representation.
func (v *Visit) SetAttachmentList(names []string) {
	v.Attachments = strings.Join(names, ",")
}
