package models

import "time"

// Patient represents a patient record owned by a single doctor.
//
// DoctorPatientID is a per-doctor sequential number (1, 2, 3, ...) shown to
// the doctor instead of the global primary key; the composite unique index
// keeps it collision-free per doctor.
//
// FirstVisit and NextVisit are derived fields. FirstVisit is monotonically
// non-increasing: it is only replaced by an earlier visit date. NextVisit is
// a rollup over the patient's future scheduled appointments and is refreshed
// on every visit or appointment write.
//
// AmountDue and AmountPaid are patient-level accumulators that are summed
// together with per-visit amounts for billing totals; both levels contribute
// at the same time.
type Patient struct {
	Base
	DoctorID        uint       `gorm:"not null;index;uniqueIndex:idx_doctor_patient_number" json:"doctor_id"`
	DoctorPatientID uint       `gorm:"not null;uniqueIndex:idx_doctor_patient_number" json:"doctor_patient_id"`
	Name            string     `gorm:"not null" json:"name"`
	Phone           string     `json:"phone"`
	Age             int        `json:"age"`
	Diagnosis       string     `json:"diagnosis"`
	Medicines       string     `json:"medicines"`
	FirstVisit      *time.Time `json:"first_visit,omitempty"`
	NextVisit       *time.Time `json:"next_visit,omitempty"`
	Completed       bool       `gorm:"default:false" json:"completed"`
	AmountDue       float64    `gorm:"not null;default:0" json:"amount_due"`
	AmountPaid      float64    `gorm:"not null;default:0" json:"amount_paid"`

	// Relationships
	Visits       []Visit       `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"visits,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"appointments,omitempty"`
}
