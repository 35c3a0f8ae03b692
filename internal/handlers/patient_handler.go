package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/pagination"
	"clinicore/internal/services"
)

// PatientHandler handles patient-related requests.
type PatientHandler struct {
	patientService services.PatientServicer
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patientService services.PatientServicer) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// CreatePatientRequest represents the request payload for creating a patient
type CreatePatientRequest struct {
	Name      string `json:"name" binding:"required,max=200"`
	Phone     string `json:"phone" binding:"max=30"`
	Age       int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	Diagnosis string `json:"diagnosis" binding:"max=2000"`
	Medicines string `json:"medicines" binding:"max=2000"`
}

// UpdatePatientRequest represents the request payload for updating a patient
type UpdatePatientRequest struct {
	Name      string `json:"name" binding:"max=200"`
	Phone     string `json:"phone" binding:"max=30"`
	Age       int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	Diagnosis string `json:"diagnosis" binding:"max=2000"`
	Medicines string `json:"medicines" binding:"max=2000"`
	Completed *bool  `json:"completed"`
}

// CreatePatient handles the creation of a new patient
// @Summary     Create a patient
// @Description Register a new patient under the authenticated doctor
// @Tags        patients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePatientRequest true "Patient details"
// @Success     201 {object} models.Patient "Patient created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients [post]
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patient, err := h.patientService.CreatePatient(doctorID, services.PatientInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Age:       req.Age,
		Diagnosis: req.Diagnosis,
		Medicines: req.Medicines,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"patient": patient})
}

// GetPatients handles the retrieval of the doctor's patients
// @Summary     List patients
// @Description Get a paginated list of the doctor's patients, optionally filtered by a search term
// @Tags        patients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       search    query string false "Search by name, phone, or patient number"
// @Success     200 {object} pagination.PageResponse[models.Patient] "Paginated patients"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients [get]
func (h *PatientHandler) GetPatients(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.patientService.GetDoctorPatients(doctorID, page, c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPatient handles the retrieval of a single patient with billing totals
// @Summary     Get patient detail
// @Description Get a patient with combined patient- and visit-level billing totals
// @Tags        patients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Patient ID"
// @Success     200 {object} services.PatientDetail "Patient detail"
// @Failure     400 {object} ErrorResponse "Invalid patient ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id} [get]
func (h *PatientHandler) GetPatient(c *gin.Context) {
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

	detail, err := h.patientService.GetPatientDetail(doctorID, patientID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdatePatient handles updating a patient
// @Summary     Update a patient
// @Description Update a patient's editable fields
// @Tags        patients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Patient ID"
// @Param       request body UpdatePatientRequest true "Fields to update"
// @Success     200 {object} models.Patient "Updated patient"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id} [put]
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
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

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patient, err := h.patientService.UpdatePatient(doctorID, patientID, services.PatientInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Age:       req.Age,
		Diagnosis: req.Diagnosis,
		Medicines: req.Medicines,
		Completed: req.Completed,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient": patient})
}

// DeletePatient handles deleting a patient and all dependent records
// @Summary     Delete a patient
// @Description Delete a patient along with their visits and appointments
// @Tags        patients
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Patient ID"
// @Success     200 {object} map[string]string "Patient deleted"
// @Failure     400 {object} ErrorResponse "Invalid patient ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id} [delete]
func (h *PatientHandler) DeletePatient(c *gin.Context) {
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

	if err := h.patientService.DeletePatient(doctorID, patientID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "patient deleted"})
}
