package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "clinicore/internal/errors"
	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/pagination"
	"clinicore/internal/services"
)

// AdminHandler handles the super-admin platform management surface.
type AdminHandler struct {
	adminService services.AdminServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.AdminServicer) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminLoginRequest represents the super-admin login payload
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateClinicRequest represents the clinic creation payload
type CreateClinicRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	Address           string `json:"address" binding:"max=300"`
	Phone             string `json:"phone" binding:"max=30"`
	Email             string `json:"email" binding:"omitempty,email"`
	SubscriptionType  string `json:"subscription_type" binding:"omitempty,subscription_type"`
	SubscriptionStart string `json:"subscription_start"`
	SubscriptionEnd   string `json:"subscription_end"`
	MaxDoctors        int    `json:"max_doctors" binding:"omitempty,min=1"`
	MaxPatients       int    `json:"max_patients" binding:"omitempty,min=1"`
}

// CreateDoctorRequest represents the doctor creation payload
type CreateDoctorRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,max=30"`
	Password  string `json:"password" binding:"required,min=6,max=128"`
	ClinicID  *uint  `json:"clinic_id"`
}

// UpdateDoctorRequest represents the admin-side doctor update payload
type UpdateDoctorRequest struct {
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=30"`
}

// ResetPasswordRequest represents the password reset payload
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6,max=128"`
}

// AssignClinicRequest represents the doctor-to-clinic assignment payload.
// A null clinic_id unassigns the doctor.
type AssignClinicRequest struct {
	ClinicID *uint `json:"clinic_id"`
}

// Login handles super-admin login
// @Summary     Login super-admin
// @Description Authenticate a super-admin and get access and refresh tokens
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body AdminLoginRequest true "Super-admin credentials"
// @Success     200 {object} map[string]interface{} "Admin authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/auth/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	admin, err := h.adminService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	access, err := middleware.GenerateAccessToken(admin.ID, admin.Email, middleware.RoleSuperAdmin)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	refresh, err := middleware.GenerateRefreshToken(admin.ID, admin.Email, middleware.RoleSuperAdmin)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	if err := h.adminService.StoreRefreshTokenHash(admin.ID, middleware.HashToken(refresh)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
		},
	})
}

// GetPlatformOverview handles the platform dashboard request
// @Summary     Platform overview
// @Description Get platform-wide clinic, doctor, and patient counts
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PlatformOverview "Platform overview"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/overview [get]
func (h *AdminHandler) GetPlatformOverview(c *gin.Context) {
	overview, err := h.adminService.GetPlatformOverview()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// CreateClinic handles clinic creation
// @Summary     Create clinic
// @Description Register a new clinic on the platform
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateClinicRequest true "Clinic details"
// @Success     201 {object} models.Clinic "Created clinic"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/clinics [post]
func (h *AdminHandler) CreateClinic(c *gin.Context) {
	var req CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.ClinicInput{
		Name:             req.Name,
		Address:          req.Address,
		Phone:            req.Phone,
		Email:            req.Email,
		SubscriptionType: models.SubscriptionType(req.SubscriptionType),
		MaxDoctors:       req.MaxDoctors,
		MaxPatients:      req.MaxPatients,
	}
	if req.SubscriptionStart != "" {
		t, err := parseFlexibleTime(req.SubscriptionStart)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid subscription_start format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.SubscriptionStart = t
	}
	if req.SubscriptionEnd != "" {
		t, err := parseFlexibleTime(req.SubscriptionEnd)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid subscription_end format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.SubscriptionEnd = &t
	}

	clinic, err := h.adminService.CreateClinic(input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"clinic": clinic})
}

// GetClinics handles clinic listing
// @Summary     List clinics
// @Description Get a paginated list of clinics, optionally filtered by name or email
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"      default(1)
// @Param       page_size query int    false "Items per page"   default(20)
// @Param       search    query string false "Name or email search"
// @Success     200 {object} pagination.PageResponse[models.Clinic] "Paginated clinics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/clinics [get]
func (h *AdminHandler) GetClinics(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	page.Defaults()

	result, err := h.adminService.GetClinics(page, c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetClinic handles single clinic retrieval
// @Summary     Get clinic
// @Description Get a clinic with its assigned doctors
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Clinic ID"
// @Success     200 {object} models.Clinic "Clinic with doctors"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Clinic not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/clinics/{id} [get]
func (h *AdminHandler) GetClinic(c *gin.Context) {
	clinicID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	clinic, err := h.adminService.GetClinicByID(clinicID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clinic": clinic})
}

// SetClinicActive handles clinic activation and suspension
// @Summary     Toggle clinic active
// @Description Activate or suspend a clinic
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Clinic ID"
// @Param       request body SetActiveRequest true "Active flag"
// @Success     200 {object} models.Clinic "Updated clinic"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Clinic not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/clinics/{id}/active [put]
func (h *AdminHandler) SetClinicActive(c *gin.Context) {
	clinicID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	clinic, err := h.adminService.SetClinicActive(clinicID, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clinic": clinic})
}

// CreateDoctor handles doctor account creation
// @Summary     Create doctor
// @Description Register a new doctor account, optionally assigned to a clinic
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateDoctorRequest true "Doctor details"
// @Success     201 {object} DoctorResponse "Created doctor"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     409 {object} ErrorResponse "Email or phone already in use, or clinic full"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/doctors [post]
func (h *AdminHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doctor, err := h.adminService.CreateDoctor(services.DoctorInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		ClinicID:  req.ClinicID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"doctor": doctorJSON(doctor)})
}

// GetDoctors handles doctor listing
// @Summary     List doctors
// @Description Get a paginated list of doctor accounts, optionally filtered by name or email
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"    default(1)
// @Param       page_size query int    false "Items per page" default(20)
// @Param       search    query string false "Name or email search"
// @Success     200 {object} pagination.PageResponse[models.Doctor] "Paginated doctors"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/doctors [get]
func (h *AdminHandler) GetDoctors(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	page.Defaults()

	result, err := h.adminService.GetDoctors(page, c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateDoctor handles admin-side doctor updates
// @Summary     Update doctor
// @Description Update a doctor's name and phone
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Doctor ID"
// @Param       request body UpdateDoctorRequest true "Doctor fields"
// @Success     200 {object} DoctorResponse "Updated doctor"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Doctor not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/doctors/{id} [put]
func (h *AdminHandler) UpdateDoctor(c *gin.Context) {
	doctorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doctor, err := h.adminService.UpdateDoctor(doctorID, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctor": doctorJSON(doctor)})
}

// SetDoctorActive handles doctor suspension and reactivation
// @Summary     Toggle doctor active
// @Description Activate or suspend a doctor account
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Doctor ID"
// @Param       request body SetActiveRequest true "Active flag"
// @Success     200 {object} DoctorResponse "Updated doctor"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Doctor not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/doctors/{id}/active [put]
func (h *AdminHandler) SetDoctorActive(c *gin.Context) {
	doctorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doctor, err := h.adminService.SetDoctorActive(doctorID, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctor": doctorJSON(doctor)})
}

// ResetDoctorPassword handles admin-side password resets
// @Summary     Reset doctor password
// @Description Set a new password for a doctor account and revoke its refresh token
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Doctor ID"
// @Param       request body ResetPasswordRequest true "New password"
// @Success     200 {object} map[string]string "Password reset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Doctor not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/doctors/{id}/password [put]
func (h *AdminHandler) ResetDoctorPassword(c *gin.Context) {
	doctorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.adminService.ResetDoctorPassword(doctorID, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// AssignDoctorToClinic handles doctor-to-clinic assignment
// @Summary     Assign doctor to clinic
// @Description Assign a doctor to a clinic, or unassign with a null clinic_id
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Doctor ID"
// @Param       request body AssignClinicRequest true "Target clinic"
// @Success     200 {object} DoctorResponse "Updated doctor"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Doctor or clinic not found"
// @Failure     409 {object} ErrorResponse "Clinic at doctor capacity"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/doctors/{id}/clinic [put]
func (h *AdminHandler) AssignDoctorToClinic(c *gin.Context) {
	doctorID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AssignClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	doctor, err := h.adminService.AssignDoctorToClinic(doctorID, req.ClinicID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctor": doctorJSON(doctor)})
}
