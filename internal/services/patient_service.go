package services

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
)

// patientService handles patient business logic.
type patientService struct {
	db *gorm.DB
}

// NewPatientService creates a new PatientServicer.
func NewPatientService(db *gorm.DB) PatientServicer {
	return &patientService{db: db}
}

// CreatePatient registers a patient under a doctor. The per-doctor patient
// number is assigned inside the insert transaction; the composite unique
// index makes concurrent duplicates fail rather than silently collide.
func (s *patientService) CreatePatient(doctorID uint, input PatientInput) (*models.Patient, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "patient name is required")
	}

	patient := &models.Patient{
		DoctorID:  doctorID,
		Name:      input.Name,
		Phone:     input.Phone,
		Age:       input.Age,
		Diagnosis: input.Diagnosis,
		Medicines: input.Medicines,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxID uint
		if err := tx.Model(&models.Patient{}).
			Where("doctor_id = ?", doctorID).
			Select("COALESCE(MAX(doctor_patient_id), 0)").
			Scan(&maxID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		patient.DoctorPatientID = maxID + 1

		if err := tx.Create(patient).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// GetDoctorPatients retrieves a paginated list of a doctor's patients,
// optionally filtered by a search term matching name, phone, or patient
// number.
func (s *patientService) GetDoctorPatients(doctorID uint, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Patient], error) {
	page.Defaults()

	base := s.db.Model(&models.Patient{}).Where("doctor_id = ?", doctorID)
	if search != "" {
		pattern := "%" + search + "%"
		if n, err := strconv.ParseUint(search, 10, 32); err == nil {
			base = base.Where("name LIKE ? OR phone LIKE ? OR doctor_patient_id = ?", pattern, pattern, uint(n))
		} else {
			base = base.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
		}
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var patients []models.Patient
	if err := base.Scopes(pagination.Paginate(page)).
		Order("doctor_patient_id ASC").
		Find(&patients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(patients, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPatientByID retrieves a patient by ID for a specific doctor
func (s *patientService) GetPatientByID(doctorID, patientID uint) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.Where("id = ? AND doctor_id = ?", patientID, doctorID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &patient, nil
}

// GetPatientDetail retrieves a patient with billing totals. Patient-level
// and visit-level amounts are independent accumulators, so the totals are
// their sum.
func (s *patientService) GetPatientDetail(doctorID, patientID uint) (*PatientDetail, error) {
	patient, err := s.GetPatientByID(doctorID, patientID)
	if err != nil {
		return nil, err
	}

	var visitDue, visitPaid float64
	if err := s.db.Model(&models.Visit{}).
		Where("patient_id = ?", patientID).
		Select("COALESCE(SUM(amount_due), 0)").
		Scan(&visitDue).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.Visit{}).
		Where("patient_id = ?", patientID).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&visitPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totalDue := patient.AmountDue + visitDue
	totalPaid := patient.AmountPaid + visitPaid

	return &PatientDetail{
		Patient: *patient,
		Billing: PatientBilling{
			TotalDue:    totalDue,
			TotalPaid:   totalPaid,
			TotalUnpaid: totalDue - totalPaid,
		},
	}, nil
}

// UpdatePatient edits a patient's editable fields
func (s *patientService) UpdatePatient(doctorID, patientID uint, input PatientInput) (*models.Patient, error) {
	patient, err := s.GetPatientByID(doctorID, patientID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		patient.Name = input.Name
	}
	patient.Phone = input.Phone
	if input.Age > 0 {
		patient.Age = input.Age
	}
	patient.Diagnosis = input.Diagnosis
	patient.Medicines = input.Medicines
	if input.Completed != nil {
		patient.Completed = *input.Completed
	}

	if err := s.db.Save(patient).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return patient, nil
}

// DeletePatient removes a patient and all dependent rows in one database
// transaction, using bulk deletes rather than per-row loops.
func (s *patientService) DeletePatient(doctorID, patientID uint) error {
	patient, err := s.GetPatientByID(doctorID, patientID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("patient_id = ?", patientID).Delete(&models.Appointment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("patient_id = ?", patientID).Delete(&models.Visit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(patient).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
