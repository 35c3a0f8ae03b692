package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
)

// appointmentService handles appointment scheduling and the next-visit
// rollup that projects the earliest scheduled future appointment onto the
// patient row.
type appointmentService struct {
	db *gorm.DB
}

// NewAppointmentService creates a new AppointmentServicer.
func NewAppointmentService(db *gorm.DB) AppointmentServicer {
	return &appointmentService{db: db}
}

// ownedPatientScope restricts an appointment query to patients of a doctor.
func ownedPatientScope(q *gorm.DB, doctorID uint) *gorm.DB {
	return q.Where("patient_id IN (SELECT id FROM patients WHERE doctor_id = ?)", doctorID)
}

func (s *appointmentService) getOwnedPatient(tx *gorm.DB, doctorID, patientID uint) (*models.Patient, error) {
	var patient models.Patient
	if err := tx.Where("id = ? AND doctor_id = ?", patientID, doctorID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &patient, nil
}

// CreateAppointment creates an appointment for one of the doctor's patients
// and refreshes the patient's next-visit projection in the same transaction.
func (s *appointmentService) CreateAppointment(doctorID uint, input AppointmentInput) (*models.Appointment, error) {
	if input.AppointmentDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "appointment date is required")
	}
	if input.Type == "" {
		input.Type = "checkup"
	}
	if input.Status == "" {
		input.Status = models.AppointmentScheduled
	}
	if input.Duration <= 0 {
		input.Duration = 60
	}
	if input.Priority == "" {
		input.Priority = models.PriorityNormal
	}

	appointment := &models.Appointment{
		PatientID:       input.PatientID,
		AppointmentDate: input.AppointmentDate,
		Type:            input.Type,
		Status:          input.Status,
		Duration:        input.Duration,
		Priority:        input.Priority,
		Notes:           input.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.getOwnedPatient(tx, doctorID, input.PatientID); err != nil {
			return err
		}
		if err := tx.Create(appointment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.RefreshNextVisit(tx, input.PatientID)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// GetPatientAppointments retrieves a paginated list of a patient's
// appointments, newest first.
func (s *appointmentService) GetPatientAppointments(doctorID, patientID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Appointment], error) {
	if _, err := s.getOwnedPatient(s.db, doctorID, patientID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Appointment{}).Where("patient_id = ?", patientID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var appointments []models.Appointment
	if err := base.Scopes(pagination.Paginate(page)).
		Order("appointment_date DESC").
		Find(&appointments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(appointments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetUpcomingAppointments lists a patient's scheduled future appointments,
// soonest first.
func (s *appointmentService) GetUpcomingAppointments(doctorID, patientID uint) ([]models.Appointment, error) {
	if _, err := s.getOwnedPatient(s.db, doctorID, patientID); err != nil {
		return nil, err
	}

	var appointments []models.Appointment
	if err := s.db.Where("patient_id = ? AND status = ? AND appointment_date > ?",
		patientID, models.AppointmentScheduled, time.Now()).
		Order("appointment_date ASC").
		Find(&appointments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return appointments, nil
}

// GetMissedAppointments lists past appointments that were never completed or
// cancelled.
func (s *appointmentService) GetMissedAppointments(doctorID, patientID uint) ([]models.Appointment, error) {
	if _, err := s.getOwnedPatient(s.db, doctorID, patientID); err != nil {
		return nil, err
	}

	var appointments []models.Appointment
	if err := s.db.Where("patient_id = ? AND appointment_date < ? AND status IN ?",
		patientID, time.Now(),
		[]models.AppointmentStatus{models.AppointmentScheduled, models.AppointmentIncomplete}).
		Order("appointment_date DESC").
		Find(&appointments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return appointments, nil
}

// GetAppointmentByID retrieves an appointment, checking ownership through
// the patient.
func (s *appointmentService) GetAppointmentByID(doctorID, appointmentID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	q := ownedPatientScope(s.db.Where("id = ?", appointmentID), doctorID)
	if err := q.First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAppointmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &appointment, nil
}

// UpdateAppointment edits an appointment and refreshes the patient's
// next-visit projection. Status changes (cancelling, completing) are what
// most often move or clear next_visit.
func (s *appointmentService) UpdateAppointment(doctorID, appointmentID uint, input AppointmentInput) (*models.Appointment, error) {
	appointment, err := s.GetAppointmentByID(doctorID, appointmentID)
	if err != nil {
		return nil, err
	}

	if !input.AppointmentDate.IsZero() {
		appointment.AppointmentDate = input.AppointmentDate
	}
	if input.Type != "" {
		appointment.Type = input.Type
	}
	if input.Status != "" {
		appointment.Status = input.Status
	}
	if input.Duration > 0 {
		appointment.Duration = input.Duration
	}
	if input.Priority != "" {
		appointment.Priority = input.Priority
	}
	appointment.Notes = input.Notes

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(appointment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.RefreshNextVisit(tx, appointment.PatientID)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// DeleteAppointment removes an appointment and refreshes the patient's
// next-visit projection.
func (s *appointmentService) DeleteAppointment(doctorID, appointmentID uint) error {
	appointment, err := s.GetAppointmentByID(doctorID, appointmentID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(appointment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.RefreshNextVisit(tx, appointment.PatientID)
	})
}

// RefreshNextVisit sets the patient's next_visit to the earliest scheduled
// future appointment date, or null when there is none. Idempotent; safe to
// call after any write that could move the projection.
func (s *appointmentService) RefreshNextVisit(tx *gorm.DB, patientID uint) error {
	var next models.Appointment
	err := tx.Where("patient_id = ? AND status = ? AND appointment_date > ?",
		patientID, models.AppointmentScheduled, time.Now()).
		Order("appointment_date ASC").
		First(&next).Error

	var nextVisit *time.Time
	switch {
	case err == nil:
		nextVisit = &next.AppointmentDate
	case errors.Is(err, gorm.ErrRecordNotFound):
		nextVisit = nil
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Model(&models.Patient{}).Where("id = ?", patientID).
		Update("next_visit", nextVisit).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
