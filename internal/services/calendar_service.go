package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
)

// calendarService builds the calendar event feed from visits, scheduled
// appointments, and projected next visits.
type calendarService struct {
	db *gorm.DB
}

// NewCalendarService creates a new CalendarServicer.
func NewCalendarService(db *gorm.DB) CalendarServicer {
	return &calendarService{db: db}
}

// GetEvents returns the doctor's calendar events. A zero from/to leaves that
// bound open. Next-visit projections are suppressed on dates that already
// have a recorded visit and are only emitted for future timestamps.
func (s *calendarService) GetEvents(doctorID uint, from, to time.Time) ([]CalendarEvent, error) {
	now := time.Now()

	visitQuery := ownedPatientScope(s.db.Preload("Patient"), doctorID)
	if !from.IsZero() {
		visitQuery = visitQuery.Where("visit_date >= ?", from)
	}
	if !to.IsZero() {
		visitQuery = visitQuery.Where("visit_date <= ?", to)
	}
	var visits []models.Visit
	if err := visitQuery.Find(&visits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	appointmentQuery := ownedPatientScope(s.db.Preload("Patient"), doctorID).
		Where("status = ?", models.AppointmentScheduled)
	if !from.IsZero() {
		appointmentQuery = appointmentQuery.Where("appointment_date >= ?", from)
	}
	if !to.IsZero() {
		appointmentQuery = appointmentQuery.Where("appointment_date <= ?", to)
	}
	var appointments []models.Appointment
	if err := appointmentQuery.Find(&appointments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var patients []models.Patient
	if err := s.db.Where("doctor_id = ? AND next_visit IS NOT NULL", doctorID).
		Find(&patients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	events := make([]CalendarEvent, 0, len(visits)+len(appointments)+len(patients))

	visitDates := make(map[string]bool, len(visits))
	for _, v := range visits {
		visitDates[v.VisitDate.Format("2006-01-02")] = true

		background, border := "#81c784", "#66bb6a"
		if !v.VisitDate.Before(now) {
			background, border = "#4fc3f7", "#29b6f6"
		}
		title := ""
		if v.Patient != nil {
			title = v.Patient.Name
		}
		events = append(events, CalendarEvent{
			ID:              fmt.Sprintf("visit-%d", v.ID),
			Title:           title,
			Start:           v.VisitDate,
			Type:            "visit",
			BackgroundColor: background,
			BorderColor:     border,
			TextColor:       "#fff",
			ExtendedProps: map[string]interface{}{
				"patient_id":  v.PatientID,
				"diagnosis":   v.Diagnosis,
				"amount_due":  v.AmountDue,
				"amount_paid": v.AmountPaid,
				"medications": v.Medications,
			},
		})
	}

	for _, a := range appointments {
		title := a.Type
		if a.Patient != nil {
			title = fmt.Sprintf("%s (%s)", a.Patient.Name, a.Type)
		}
		events = append(events, CalendarEvent{
			ID:              fmt.Sprintf("appointment-%d", a.ID),
			Title:           title,
			Start:           a.AppointmentDate,
			Type:            "appointment",
			BackgroundColor: "#9c27b0",
			BorderColor:     "#7b1fa2",
			TextColor:       "#fff",
			ExtendedProps: map[string]interface{}{
				"patient_id": a.PatientID,
				"diagnosis":  a.Type + " appointment",
				"notes":      a.Notes,
				"duration":   a.Duration,
				"priority":   a.Priority,
			},
		})
	}

	for _, p := range patients {
		next := *p.NextVisit
		if next.Before(now) || visitDates[next.Format("2006-01-02")] {
			continue
		}
		events = append(events, CalendarEvent{
			ID:              fmt.Sprintf("next-%d-%s", p.ID, next.Format(time.RFC3339)),
			Title:           p.Name + " (Next Visit)",
			Start:           next,
			Type:            "next_visit",
			BackgroundColor: "#ffb74d",
			BorderColor:     "#ffa726",
			TextColor:       "#2c3e50",
			ExtendedProps: map[string]interface{}{
				"patient_id":  p.ID,
				"diagnosis":   p.Diagnosis,
				"amount_due":  p.AmountDue,
				"amount_paid": p.AmountPaid,
			},
		})
	}

	return events, nil
}
