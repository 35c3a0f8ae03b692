package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"clinicore/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestClinic creates an active clinic on the basic tier.
func CreateTestClinic(t *testing.T, db *gorm.DB) *models.Clinic {
	t.Helper()

	n := nextID()
	clinic := &models.Clinic{
		Name:              fmt.Sprintf("Test Clinic %d", n),
		Email:             fmt.Sprintf("clinic%d@test.com", n),
		SubscriptionType:  models.SubscriptionBasic,
		SubscriptionStart: time.Now(),
		IsActive:          true,
		MaxDoctors:        3,
		MaxPatients:       100,
	}
	if err := db.Create(clinic).Error; err != nil {
		t.Fatalf("failed to create test clinic: %v", err)
	}
	return clinic
}

// CreateTestSuperAdmin creates an active super-admin with a hashed password.
func CreateTestSuperAdmin(t *testing.T, db *gorm.DB) *models.SuperAdmin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	admin := &models.SuperAdmin{
		Username: fmt.Sprintf("admin%d", n),
		Email:    fmt.Sprintf("admin%d@test.com", n),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create test super admin: %v", err)
	}
	return admin
}

// CreateTestDoctor creates a verified, active doctor with a hashed password
// and unique email and phone.
func CreateTestDoctor(t *testing.T, db *gorm.DB) *models.Doctor {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	doctor := &models.Doctor{
		FirstName: "Test",
		LastName:  fmt.Sprintf("Doctor%d", n),
		Email:     fmt.Sprintf("doctor%d@test.com", n),
		Phone:     fmt.Sprintf("+1555%07d", n),
		Password:  string(hash),
		Verified:  true,
		IsActive:  true,
		Role:      models.DoctorRoleDoctor,
	}
	if err := db.Create(doctor).Error; err != nil {
		t.Fatalf("failed to create test doctor: %v", err)
	}
	return doctor
}

// CreateTestPatient creates a patient with the next per-doctor number.
func CreateTestPatient(t *testing.T, db *gorm.DB, doctorID uint) *models.Patient {
	t.Helper()

	var maxNumber uint
	row := db.Model(&models.Patient{}).
		Where("doctor_id = ?", doctorID).
		Select("COALESCE(MAX(doctor_patient_id), 0)").
		Row()
	if err := row.Scan(&maxNumber); err != nil {
		t.Fatalf("failed to read patient numbers: %v", err)
	}

	patient := &models.Patient{
		DoctorID:        doctorID,
		DoctorPatientID: maxNumber + 1,
		Name:            fmt.Sprintf("Test Patient %d", nextID()),
		Phone:           fmt.Sprintf("+1666%07d", nextID()),
		Age:             35,
	}
	if err := db.Create(patient).Error; err != nil {
		t.Fatalf("failed to create test patient: %v", err)
	}
	return patient
}

// CreateTestVisit creates a visit on the given date with the given amounts.
func CreateTestVisit(t *testing.T, db *gorm.DB, patientID uint, visitDate time.Time, due, paid float64) *models.Visit {
	t.Helper()

	visit := &models.Visit{
		PatientID:  patientID,
		VisitDate:  visitDate,
		Diagnosis:  "Routine checkup",
		AmountDue:  due,
		AmountPaid: paid,
	}
	if err := db.Create(visit).Error; err != nil {
		t.Fatalf("failed to create test visit: %v", err)
	}
	return visit
}

// CreateTestAppointment creates a scheduled appointment on the given date.
func CreateTestAppointment(t *testing.T, db *gorm.DB, patientID uint, date time.Time) *models.Appointment {
	t.Helper()

	appt := &models.Appointment{
		PatientID:       patientID,
		AppointmentDate: date,
		Type:            "checkup",
		Status:          models.AppointmentScheduled,
		Duration:        60,
		Priority:        models.PriorityNormal,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("failed to create test appointment: %v", err)
	}
	return appt
}

// CreateTestTransaction creates a ledger entry of the given type and amount,
// dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, doctorID uint, txType models.TransactionType, category string, amount float64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, doctorID, txType, category, amount, time.Now())
}

// CreateTestTransactionOn creates a ledger entry dated at the given time.
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, doctorID uint, txType models.TransactionType, category string, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		DoctorID:        doctorID,
		Type:            txType,
		Category:        category,
		Amount:          amount,
		Description:     fmt.Sprintf("Test transaction %d", nextID()),
		TransactionDate: date,
		PaymentMethod:   models.PaymentCash,
		ReferenceType:   models.ReferenceManual,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active budget for the given category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, doctorID uint, category string, year, month int, limit float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		DoctorID:       doctorID,
		Category:       category,
		Year:           year,
		Month:          month,
		MonthlyLimit:   limit,
		AlertThreshold: 80,
		IsActive:       true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCategory creates a custom category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, doctorID uint, categoryType models.TransactionType) *models.ExpenseCategory {
	t.Helper()

	category := &models.ExpenseCategory{
		DoctorID: doctorID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Type:     categoryType,
		Color:    "#6c757d",
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}
