package models

import "time"

// DoctorRole represents the role of a doctor account within a clinic
type DoctorRole string

const (
	DoctorRoleDoctor DoctorRole = "doctor"
	DoctorRoleAdmin  DoctorRole = "admin"
)

// Doctor represents a doctor account. Doctors are the tenant boundary of the
// system: every patient, visit, transaction, category, and budget belongs to
// exactly one doctor.
type Doctor struct {
	Base
	ClinicID         *uint      `json:"clinic_id,omitempty"`
	FirstName        string     `gorm:"not null" json:"first_name"`
	LastName         string     `gorm:"not null" json:"last_name"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone            string     `gorm:"uniqueIndex;not null" json:"phone"`
	Password         string     `gorm:"not null" json:"-"`
	Verified         bool       `gorm:"default:false" json:"verified"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	Role             DoctorRole `gorm:"default:'doctor'" json:"role"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Clinic       *Clinic           `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
	Patients     []Patient         `gorm:"foreignKey:DoctorID" json:"patients,omitempty"`
	Transactions []Transaction     `gorm:"foreignKey:DoctorID" json:"transactions,omitempty"`
	Categories   []ExpenseCategory `gorm:"foreignKey:DoctorID" json:"categories,omitempty"`
	Budgets      []Budget          `gorm:"foreignKey:DoctorID" json:"budgets,omitempty"`
}
