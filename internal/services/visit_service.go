package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
)

// visitService handles visit business logic. Paid amounts are reconciled
// into the ledger: the visit write, its derived ledger entries, any budget
// recompute, and the patient rollups all commit in one database transaction.
type visitService struct {
	db                 *gorm.DB
	ledgerService      LedgerServicer
	appointmentService AppointmentServicer
}

// NewVisitService creates a new VisitServicer.
func NewVisitService(db *gorm.DB, ledgerService LedgerServicer, appointmentService AppointmentServicer) VisitServicer {
	return &visitService{
		db:                 db,
		ledgerService:      ledgerService,
		appointmentService: appointmentService,
	}
}

// CreateVisit records a patient visit. A positive paid amount derives an
// income ledger entry dated to the visit.
func (s *visitService) CreateVisit(doctorID uint, input VisitInput) (*models.Visit, error) {
	if input.VisitDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "visit date is required")
	}
	if input.AmountDue < 0 || input.AmountPaid < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts cannot be negative")
	}

	visit := &models.Visit{
		PatientID:   input.PatientID,
		VisitDate:   input.VisitDate,
		Diagnosis:   input.Diagnosis,
		AmountDue:   input.AmountDue,
		AmountPaid:  input.AmountPaid,
		Medications: input.Medications,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		patient, err := s.getOwnedPatient(tx, doctorID, input.PatientID)
		if err != nil {
			return err
		}

		if err := tx.Create(visit).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if input.AmountPaid > 0 {
			visitID := visit.ID
			_, err := s.ledgerService.RecordTransactionTx(tx, doctorID, TransactionInput{
				Type:            models.TransactionIncome,
				Category:        "Patient Payment",
				Subcategory:     "Visit Payment",
				Amount:          input.AmountPaid,
				Description:     "Payment for visit on " + input.VisitDate.Format("2006-01-02"),
				TransactionDate: input.VisitDate,
				PaymentMethod:   models.PaymentCash,
				ReferenceType:   models.ReferenceVisit,
				ReferenceID:     &visitID,
			})
			if err != nil {
				return err
			}
		}

		if err := s.refreshFirstVisit(tx, patient, input.VisitDate); err != nil {
			return err
		}
		return s.appointmentService.RefreshNextVisit(tx, input.PatientID)
	})
	if err != nil {
		return nil, err
	}
	return visit, nil
}

// UpdateVisit edits a visit and reconciles any paid-amount change into the
// ledger. An increase books income; a decrease books an expense refund for
// the difference, which in turn recomputes the affected budget. An
// unchanged paid amount writes no ledger entry.
func (s *visitService) UpdateVisit(doctorID, visitID uint, input VisitInput) (*models.Visit, error) {
	visit, err := s.GetVisitByID(doctorID, visitID)
	if err != nil {
		return nil, err
	}
	if input.AmountDue < 0 || input.AmountPaid < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts cannot be negative")
	}

	delta := input.AmountPaid - visit.AmountPaid

	if !input.VisitDate.IsZero() {
		visit.VisitDate = input.VisitDate
	}
	visit.Diagnosis = input.Diagnosis
	visit.AmountDue = input.AmountDue
	visit.AmountPaid = input.AmountPaid
	visit.Medications = input.Medications

	err = s.db.Transaction(func(tx *gorm.DB) error {
		patient, err := s.getOwnedPatient(tx, doctorID, visit.PatientID)
		if err != nil {
			return err
		}

		if err := tx.Save(visit).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if delta != 0 {
			id := visit.ID
			entry := TransactionInput{
				TransactionDate: time.Now(),
				PaymentMethod:   models.PaymentCash,
				ReferenceType:   models.ReferenceVisit,
				ReferenceID:     &id,
			}
			if delta > 0 {
				entry.Type = models.TransactionIncome
				entry.Category = "Patient Payment"
				entry.Subcategory = "Visit Payment Update"
				entry.Amount = delta
				entry.Description = "Additional payment for visit on " + visit.VisitDate.Format("2006-01-02")
			} else {
				entry.Type = models.TransactionExpense
				entry.Category = "Patient Refund"
				entry.Subcategory = "Visit Payment Refund"
				entry.Amount = -delta
				entry.Description = "Refund for visit on " + visit.VisitDate.Format("2006-01-02")
			}
			if _, err := s.ledgerService.RecordTransactionTx(tx, doctorID, entry); err != nil {
				return err
			}
		}

		if err := s.refreshFirstVisit(tx, patient, visit.VisitDate); err != nil {
			return err
		}
		return s.appointmentService.RefreshNextVisit(tx, visit.PatientID)
	})
	if err != nil {
		return nil, err
	}
	return visit, nil
}

// GetPatientVisits retrieves a paginated list of a patient's visits, newest
// first.
func (s *visitService) GetPatientVisits(doctorID, patientID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Visit], error) {
	if _, err := s.getOwnedPatient(s.db, doctorID, patientID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Visit{}).Where("patient_id = ?", patientID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var visits []models.Visit
	if err := base.Scopes(pagination.Paginate(page)).
		Order("visit_date DESC").
		Find(&visits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(visits, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetVisitByID retrieves a visit, checking ownership through the patient.
func (s *visitService) GetVisitByID(doctorID, visitID uint) (*models.Visit, error) {
	var visit models.Visit
	q := ownedPatientScope(s.db.Where("id = ?", visitID), doctorID)
	if err := q.First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVisitNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &visit, nil
}

// DeleteVisit removes a visit. Derived ledger entries are kept; they record
// money that actually moved.
func (s *visitService) DeleteVisit(doctorID, visitID uint) error {
	visit, err := s.GetVisitByID(doctorID, visitID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(visit).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddAttachment appends a filename to the visit's attachment list.
func (s *visitService) AddAttachment(doctorID, visitID uint, filename string) (*models.Visit, error) {
	if filename == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "filename is required")
	}

	visit, err := s.GetVisitByID(doctorID, visitID)
	if err != nil {
		return nil, err
	}

	names := visit.AttachmentList()
	for _, n := range names {
		if n == filename {
			return visit, nil
		}
	}
	visit.SetAttachmentList(append(names, filename))

	if err := s.db.Model(visit).Update("attachments", visit.Attachments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return visit, nil
}

// RemoveAttachment deletes a filename from the visit's attachment list.
func (s *visitService) RemoveAttachment(doctorID, visitID uint, filename string) (*models.Visit, error) {
	visit, err := s.GetVisitByID(doctorID, visitID)
	if err != nil {
		return nil, err
	}

	names := visit.AttachmentList()
	kept := names[:0]
	for _, n := range names {
		if n != filename {
			kept = append(kept, n)
		}
	}
	visit.SetAttachmentList(kept)

	if err := s.db.Model(visit).Update("attachments", visit.Attachments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return visit, nil
}

func (s *visitService) getOwnedPatient(tx *gorm.DB, doctorID, patientID uint) (*models.Patient, error) {
	var patient models.Patient
	if err := tx.Where("id = ? AND doctor_id = ?", patientID, doctorID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &patient, nil
}

// refreshFirstVisit sets first_visit when unset, or moves it earlier when a
// visit predates it. Later visits never move it forward.
func (s *visitService) refreshFirstVisit(tx *gorm.DB, patient *models.Patient, visitDate time.Time) error {
	if patient.FirstVisit != nil && !visitDate.Before(*patient.FirstVisit) {
		return nil
	}
	if err := tx.Model(patient).Update("first_visit", visitDate).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
