package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
	"clinicore/internal/services"
)

// AppointmentHandler handles appointment-related requests.
type AppointmentHandler struct {
	appointmentService services.AppointmentServicer
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointmentService services.AppointmentServicer) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// CreateAppointmentRequest represents the request payload for creating an appointment
type CreateAppointmentRequest struct {
	PatientID       uint   `json:"patient_id" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	Type            string `json:"type" binding:"max=50"`
	Duration        int    `json:"duration" binding:"omitempty,gt=0"`
	Priority        string `json:"priority" binding:"omitempty,priority"`
	Notes           string `json:"notes" binding:"max=2000"`
}

// UpdateAppointmentRequest represents the request payload for updating an appointment
type UpdateAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date"`
	Type            string `json:"type" binding:"max=50"`
	Status          string `json:"status" binding:"omitempty,appointment_status"`
	Duration        int    `json:"duration" binding:"omitempty,gt=0"`
	Priority        string `json:"priority" binding:"omitempty,priority"`
	Notes           string `json:"notes" binding:"max=2000"`
}

// CreateAppointment handles the creation of a new appointment
// @Summary     Create an appointment
// @Description Schedule an appointment for one of the doctor's patients
// @Tags        appointments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAppointmentRequest true "Appointment details"
// @Success     201 {object} models.Appointment "Appointment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /appointments [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	appointmentDate, err := parseFlexibleTime(req.AppointmentDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid appointment_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	appointment, err := h.appointmentService.CreateAppointment(doctorID, services.AppointmentInput{
		PatientID:       req.PatientID,
		AppointmentDate: appointmentDate,
		Type:            req.Type,
		Duration:        req.Duration,
		Priority:        models.AppointmentPriority(req.Priority),
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"appointment": appointment})
}

// GetPatientAppointments handles the retrieval of a patient's appointments
// @Summary     List patient appointments
// @Description Get a paginated list of a patient's appointments, newest first
// @Tags        appointments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  int true  "Patient ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Appointment] "Paginated appointments"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id}/appointments [get]
func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	patientID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.appointmentService.GetPatientAppointments(doctorID, patientID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUpcomingAppointments lists a patient's scheduled future appointments
// @Summary     List upcoming appointments
// @Description Get a patient's scheduled future appointments, soonest first
// @Tags        appointments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Patient ID"
// @Success     200 {array} models.Appointment "Upcoming appointments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id}/appointments/upcoming [get]
func (h *AppointmentHandler) GetUpcomingAppointments(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	patientID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	appointments, err := h.appointmentService.GetUpcomingAppointments(doctorID, patientID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// GetMissedAppointments lists a patient's missed appointments
// @Summary     List missed appointments
// @Description Get past appointments that were never completed or cancelled
// @Tags        appointments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Patient ID"
// @Success     200 {array} models.Appointment "Missed appointments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id}/appointments/missed [get]
func (h *AppointmentHandler) GetMissedAppointments(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	patientID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	appointments, err := h.appointmentService.GetMissedAppointments(doctorID, patientID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// UpdateAppointment handles updating an appointment
// @Summary     Update an appointment
// @Description Update an appointment; status and date changes refresh the patient's next visit
// @Tags        appointments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Appointment ID"
// @Param       request body UpdateAppointmentRequest true "Fields to update"
// @Success     200 {object} models.Appointment "Updated appointment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Appointment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /appointments/{id} [put]
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	appointmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var appointmentDate time.Time
	if req.AppointmentDate != "" {
		appointmentDate, err = parseFlexibleTime(req.AppointmentDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid appointment_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
	}

	appointment, err := h.appointmentService.UpdateAppointment(doctorID, appointmentID, services.AppointmentInput{
		AppointmentDate: appointmentDate,
		Type:            req.Type,
		Status:          models.AppointmentStatus(req.Status),
		Duration:        req.Duration,
		Priority:        models.AppointmentPriority(req.Priority),
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appointment})
}

// DeleteAppointment handles deleting an appointment
// @Summary     Delete an appointment
// @Description Delete an appointment and refresh the patient's next visit
// @Tags        appointments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Appointment ID"
// @Success     200 {object} map[string]string "Appointment deleted"
// @Failure     400 {object} ErrorResponse "Invalid appointment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Appointment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /appointments/{id} [delete]
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	appointmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.appointmentService.DeleteAppointment(doctorID, appointmentID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}
