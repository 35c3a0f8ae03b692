package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/pagination"
	"clinicore/internal/services"
)

// VisitHandler handles visit-related requests.
type VisitHandler struct {
	visitService services.VisitServicer
}

// NewVisitHandler creates a new VisitHandler.
func NewVisitHandler(visitService services.VisitServicer) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

// CreateVisitRequest represents the request payload for creating a visit
type CreateVisitRequest struct {
	PatientID   uint    `json:"patient_id" binding:"required"`
	VisitDate   string  `json:"visit_date" binding:"required"`
	Diagnosis   string  `json:"diagnosis" binding:"max=2000"`
	AmountDue   float64 `json:"amount_due" binding:"omitempty,gte=0"`
	AmountPaid  float64 `json:"amount_paid" binding:"omitempty,gte=0"`
	Medications string  `json:"medications" binding:"max=2000"`
}

// UpdateVisitRequest represents the request payload for updating a visit
type UpdateVisitRequest struct {
	VisitDate   string  `json:"visit_date"`
	Diagnosis   string  `json:"diagnosis" binding:"max=2000"`
	AmountDue   float64 `json:"amount_due" binding:"omitempty,gte=0"`
	AmountPaid  float64 `json:"amount_paid" binding:"omitempty,gte=0"`
	Medications string  `json:"medications" binding:"max=2000"`
}

// AttachmentRequest carries an attachment filename.
type AttachmentRequest struct {
	Filename string `json:"filename" binding:"required,max=255"`
}

// CreateVisit handles the creation of a new visit
// @Summary     Create a visit
// @Description Record a patient visit; a positive paid amount derives an income ledger entry
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateVisitRequest true "Visit details"
// @Success     201 {object} models.Visit "Visit created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /visits [post]
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	visitDate, err := parseFlexibleTime(req.VisitDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid visit_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	visit, err := h.visitService.CreateVisit(doctorID, services.VisitInput{
		PatientID:   req.PatientID,
		VisitDate:   visitDate,
		Diagnosis:   req.Diagnosis,
		AmountDue:   req.AmountDue,
		AmountPaid:  req.AmountPaid,
		Medications: req.Medications,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"visit": visit})
}

// GetPatientVisits handles the retrieval of a patient's visits
// @Summary     List patient visits
// @Description Get a paginated list of a patient's visits, newest first
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  int true  "Patient ID"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Visit] "Paginated visits"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Patient not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /patients/{id}/visits [get]
func (h *VisitHandler) GetPatientVisits(c *gin.Context) {
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

	result, err := h.visitService.GetPatientVisits(doctorID, patientID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetVisit handles the retrieval of a single visit
// @Summary     Get visit by ID
// @Description Get a specific visit by ID
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Visit ID"
// @Success     200 {object} models.Visit "Visit details"
// @Failure     400 {object} ErrorResponse "Invalid visit ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Visit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /visits/{id} [get]
func (h *VisitHandler) GetVisit(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	visitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	visit, err := h.visitService.GetVisitByID(doctorID, visitID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// UpdateVisit handles updating a visit
// @Summary     Update a visit
// @Description Update a visit; paid-amount changes are reconciled into the ledger
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Visit ID"
// @Param       request body UpdateVisitRequest true "Fields to update"
// @Success     200 {object} models.Visit "Updated visit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Visit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /visits/{id} [put]
func (h *VisitHandler) UpdateVisit(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	visitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var visitDate time.Time
	if req.VisitDate != "" {
		visitDate, err = parseFlexibleTime(req.VisitDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid visit_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
	}

	visit, err := h.visitService.UpdateVisit(doctorID, visitID, services.VisitInput{
		VisitDate:   visitDate,
		Diagnosis:   req.Diagnosis,
		AmountDue:   req.AmountDue,
		AmountPaid:  req.AmountPaid,
		Medications: req.Medications,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// DeleteVisit handles deleting a visit
// @Summary     Delete a visit
// @Description Delete a visit; derived ledger entries are kept
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Visit ID"
// @Success     200 {object} map[string]string "Visit deleted"
// @Failure     400 {object} ErrorResponse "Invalid visit ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Visit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /visits/{id} [delete]
func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	visitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.visitService.DeleteVisit(doctorID, visitID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "visit deleted"})
}

// AddAttachment adds an attachment filename to a visit
// @Summary     Add attachment
// @Description Append an attachment filename to a visit
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Visit ID"
// @Param       request body AttachmentRequest true "Attachment filename"
// @Success     200 {object} models.Visit "Updated visit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Visit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /visits/{id}/attachments [post]
func (h *VisitHandler) AddAttachment(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	visitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	visit, err := h.visitService.AddAttachment(doctorID, visitID, req.Filename)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// RemoveAttachment removes an attachment filename from a visit
// @Summary     Remove attachment
// @Description Remove an attachment filename from a visit
// @Tags        visits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path int    true "Visit ID"
// @Param       filename path string true "Attachment filename"
// @Success     200 {object} models.Visit "Updated visit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Visit not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /visits/{id}/attachments/{filename} [delete]
func (h *VisitHandler) RemoveAttachment(c *gin.Context) {
	doctorID, err := getDoctorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	visitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	visit, err := h.visitService.RemoveAttachment(doctorID, visitID, c.Param("filename"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"visit": visit})
}
